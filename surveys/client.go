// Package surveys reads and submits farmer surveys through the authenticated
// request pipeline.
package surveys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-agri-client/apiclient"
	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	basePath = "/api/v1/employeeFarmerSurveys"

	// maxParallelGets bounds GetMany so a long id list stays well inside the
	// api rate limit window.
	maxParallelGets = 4
)

// SelfieUpload is the photo sent with a new survey.
type SelfieUpload struct {
	Filename string
	Content  io.Reader
}

type Client struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Get returns one survey.
func (c *Client) Get(ctx context.Context, id string) (*Survey, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "survey id is required")
	}

	var out envelope[*Survey]
	if err := c.api.GetJSON(ctx, surveyPath(id), &out, apiclient.PipelineConfig{}); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "survey %s", id)
	}
	return out.Data, nil
}

// GetMany fetches several surveys concurrently, preserving the order of ids.
// The first failure cancels the remaining requests.
func (c *Client) GetMany(ctx context.Context, ids []string) ([]*Survey, error) {
	out := make([]*Survey, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelGets)

	for i, id := range ids {
		g.Go(func() error {
			s, err := c.Get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every survey visible to the signed in user.
func (c *Client) List(ctx context.Context) ([]Survey, error) {
	var out envelope[[]Survey]
	if err := c.api.GetJSON(ctx, basePath, &out, apiclient.PipelineConfig{}); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []Survey{}, nil
	}
	return out.Data, nil
}

// Create submits a new survey as multipart form data: the form as JSON in
// the "survey" part and the optional selfie in "farmerSelfie".
func (c *Client) Create(ctx context.Context, form SurveyForm, selfie *SelfieUpload) (*Survey, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode survey: %w", err)
	}
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="survey"`)
	partHeader.Set("Content-Type", "application/json")
	part, err := w.CreatePart(partHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(formJSON); err != nil {
		return nil, err
	}

	if selfie != nil && selfie.Content != nil {
		filename := selfie.Filename
		if filename == "" {
			filename = "selfie.jpg"
		}
		fw, err := w.CreateFormFile("farmerSelfie", filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, selfie.Content); err != nil {
			return nil, fmt.Errorf("read selfie: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := c.api.Fetch(ctx, c.api.URL(basePath), apiclient.RequestOptions{
		Method:     http.MethodPost,
		Header:     http.Header{"Content-Type": []string{w.FormDataContentType()}},
		Body:       body,
		IsFormData: true,
	}, apiclient.PipelineConfig{RateLimitType: ratelimit.CategoryUpload})
	if err != nil {
		return nil, err
	}

	var out envelope[*Survey]
	if err := apiclient.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Update replaces the editable fields of an existing survey.
func (c *Client) Update(ctx context.Context, id string, form SurveyForm) (*Survey, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "survey id is required")
	}

	var out envelope[*Survey]
	if err := c.api.SendJSON(ctx, http.MethodPut, surveyPath(id), form, &out, apiclient.PipelineConfig{}); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func surveyPath(id string) string {
	return basePath + "/" + url.PathEscape(id)
}
