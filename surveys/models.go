package surveys

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
)

// FlexString accepts a JSON string or number. Identifiers come back as either
// depending on the endpoint.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Selfie is the farmer photo attached to a survey. ImageURL holds base64 JPEG
// data, optionally as a data: URL.
type Selfie struct {
	ImageURL string `json:"imageUrl,omitempty"`
	TakenAt  string `json:"takenAt,omitempty"`
}

// Survey is a farmer survey as returned by /api/v1/employeeFarmerSurveys.
type Survey struct {
	SurveyID            FlexString `json:"surveyId"`
	FormNumber          string     `json:"formNumber,omitempty"`
	FormStatus          string     `json:"formStatus,omitempty"`
	UserID              FlexString `json:"userId,omitempty"`
	FarmerName          string     `json:"farmerName,omitempty"`
	FarmerMobile        string     `json:"farmerMobile,omitempty"`
	Address             string     `json:"address,omitempty"`
	Village             string     `json:"village,omitempty"`
	Taluka              string     `json:"taluka,omitempty"`
	District            string     `json:"district,omitempty"`
	LandArea            FlexString `json:"landArea,omitempty"`
	FarmInformation     string     `json:"farmInformation,omitempty"`
	CropDetails         []string   `json:"cropDetails,omitempty"`
	LivestockDetails    []string   `json:"livestockDetails,omitempty"`
	ProductionEquipment []string   `json:"productionEquipment,omitempty"`
	SampleCollected     bool       `json:"sampleCollected,omitempty"`
	FarmerSelfie        *Selfie    `json:"farmerSelfie,omitempty"`
}

// SelfieJPEG decodes the attached selfie. ErrNotFound when there is none.
func (s *Survey) SelfieJPEG() ([]byte, error) {
	if s == nil || s.FarmerSelfie == nil || strings.TrimSpace(s.FarmerSelfie.ImageURL) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "survey %s has no selfie", s.id())
	}

	data := strings.TrimSpace(s.FarmerSelfie.ImageURL)
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}

	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "survey %s selfie", s.id())
	}
	return img, nil
}

// SelfieFilename mirrors the download name used by the web front end.
func (s *Survey) SelfieFilename() string {
	name := "Image"
	if s != nil && s.FarmerName != "" {
		name = s.FarmerName
	}
	return "FarmerSelfie-" + name + ".jpg"
}

func (s *Survey) id() string {
	if s == nil {
		return "<nil>"
	}
	if s.SurveyID == "" {
		return "(unsaved)"
	}
	return s.SurveyID.String()
}

// SurveyForm is the payload an employee submits for a new or edited survey.
type SurveyForm struct {
	FarmerName          string   `json:"farmerName"`
	FarmerMobile        string   `json:"farmerMobile"`
	AlternateMobile     string   `json:"alternateMobile,omitempty"`
	Address             string   `json:"address,omitempty"`
	Village             string   `json:"village"`
	Taluka              string   `json:"taluka,omitempty"`
	District            string   `json:"district,omitempty"`
	FarmInformation     string   `json:"farmInformation,omitempty"`
	CropDetails         []string `json:"cropDetails,omitempty"`
	LivestockDetails    []string `json:"livestockDetails,omitempty"`
	ProductionEquipment []string `json:"productionEquipment,omitempty"`
	MembershipFee       string   `json:"membershipFee,omitempty"`
	TermsAccepted       bool     `json:"termsAccepted"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}
