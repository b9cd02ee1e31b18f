package surveys_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-agri-client/apiclient"
	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/surveys"
	"github.com/jrsteele09/go-agri-client/token"
	tokenfakerepo "github.com/jrsteele09/go-agri-client/token/repofake"
	"github.com/stretchr/testify/require"
)

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func setupClient(t *testing.T, handler http.HandlerFunc) *surveys.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"authorities": []string{"ROLE_EMPLOYEE"},
		"exp":         time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("1234"))
	require.NoError(t, err)

	store := token.NewStore(tokenfakerepo.NewFakeSessionRepo())
	require.NoError(t, store.SetSession(context.Background(), raw, token.SessionClaims{}))

	api, err := apiclient.New(ts.URL, store)
	require.NoError(t, err)
	return surveys.New(api)
}

func TestGet(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/employeeFarmerSurveys/42", r.URL.Path)
		require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		_, _ = io.WriteString(w, `{"data":{
			"surveyId": 42,
			"formNumber": "F-0042",
			"farmerName": "Ravi Jadhav",
			"farmerMobile": "9876543210",
			"village": "Wai",
			"landArea": 2.5,
			"cropDetails": ["Jowar", "Onion"],
			"sampleCollected": true,
			"farmerSelfie": {"imageUrl": "`+base64.StdEncoding.EncodeToString(jpeg)+`", "takenAt": "2024-05-01T10:00:00Z"}
		}}`)
	})

	s, err := client.Get(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, surveys.FlexString("42"), s.SurveyID)
	require.Equal(t, "F-0042", s.FormNumber)
	require.Equal(t, "Ravi Jadhav", s.FarmerName)
	require.Equal(t, surveys.FlexString("2.5"), s.LandArea)
	require.Equal(t, []string{"Jowar", "Onion"}, s.CropDetails)
	require.True(t, s.SampleCollected)

	img, err := s.SelfieJPEG()
	require.NoError(t, err)
	require.Equal(t, jpeg, img)
	require.Equal(t, "FarmerSelfie-Ravi Jadhav.jpg", s.SelfieFilename())
}

func TestGet_Errors(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Survey not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":null}`)
	})

	_, err := client.Get(context.Background(), "missing")
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "Survey not found", apiErr.Message)

	_, err = client.Get(context.Background(), "7")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = client.Get(context.Background(), " ")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetMany(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/employeeFarmerSurveys/")
		if id == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"surveyId":"`+id+`"}}`)
	})

	list, err := client.GetMany(context.Background(), []string{"3", "1", "2", "5", "4"})
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, want := range []string{"3", "1", "2", "5", "4"} {
		require.Equal(t, surveys.FlexString(want), list[i].SurveyID)
	}

	_, err = client.GetMany(context.Background(), []string{"1", "bad", "2"})
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestList(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/employeeFarmerSurveys", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"surveyId":"a1","farmerName":"A"},{"surveyId":2,"farmerName":"B"}]}`)
	})

	list, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, surveys.FlexString("a1"), list[0].SurveyID)
	require.Equal(t, surveys.FlexString("2"), list[1].SurveyID)
}

func TestList_Empty(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	list, err := client.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreate(t *testing.T) {
	var (
		gotForm   surveys.SurveyForm
		gotSelfie []byte
		gotName   string
	)
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.NoError(t, json.Unmarshal([]byte(r.FormValue("survey")), &gotForm))
		f, fh, err := r.FormFile("farmerSelfie")
		require.NoError(t, err)
		defer f.Close()
		gotName = fh.Filename
		gotSelfie, _ = io.ReadAll(f)

		_, _ = io.WriteString(w, `{"data":{"surveyId":99,"farmerName":"Ravi Jadhav"}}`)
	})

	form := surveys.SurveyForm{FarmerName: "Ravi Jadhav", FarmerMobile: "9876543210", Village: "Wai", TermsAccepted: true}
	created, err := client.Create(context.Background(), form, &surveys.SelfieUpload{Filename: "ravi.jpg", Content: strings.NewReader(string(jpeg))})
	require.NoError(t, err)
	require.Equal(t, surveys.FlexString("99"), created.SurveyID)
	require.Equal(t, form, gotForm)
	require.Equal(t, "ravi.jpg", gotName)
	require.Equal(t, jpeg, gotSelfie)
}

func TestCreate_ContentTypeCarriesBoundary(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("farmerSelfie")
		require.ErrorIs(t, err, http.ErrMissingFile)
		_, _ = io.WriteString(w, `{"data":{"surveyId":1}}`)
	})

	_, err := client.Create(context.Background(), surveys.SurveyForm{FarmerName: "X"}, nil)
	require.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/employeeFarmerSurveys/5", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), `"village":"Satara"`)
		_, _ = io.WriteString(w, `{"data":{"surveyId":5,"village":"Satara"}}`)
	})

	updated, err := client.Update(context.Background(), "5", surveys.SurveyForm{Village: "Satara"})
	require.NoError(t, err)
	require.Equal(t, "Satara", updated.Village)
}

func TestSelfieJPEG(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(jpeg)

	t.Run("data url", func(t *testing.T) {
		s := &surveys.Survey{FarmerSelfie: &surveys.Selfie{ImageURL: "data:image/jpeg;base64," + encoded}}
		img, err := s.SelfieJPEG()
		require.NoError(t, err)
		require.Equal(t, jpeg, img)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := (&surveys.Survey{SurveyID: "3"}).SelfieJPEG()
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("invalid base64", func(t *testing.T) {
		s := &surveys.Survey{FarmerSelfie: &surveys.Selfie{ImageURL: "%%%"}}
		_, err := s.SelfieJPEG()
		require.Error(t, err)
	})

	t.Run("default filename", func(t *testing.T) {
		require.Equal(t, "FarmerSelfie-Image.jpg", (&surveys.Survey{}).SelfieFilename())
	})
}
