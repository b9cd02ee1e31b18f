package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DecodeJSON decodes a successful response body into out and closes it.
// An empty body leaves out untouched.
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err := json.NewDecoder(resp.Body).Decode(out)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetJSON fetches path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any, cfg PipelineConfig) error {
	resp, err := c.Fetch(ctx, c.URL(path), RequestOptions{Method: http.MethodGet}, cfg)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}

// SendJSON encodes in as the request body and decodes the response into out.
func (c *Client) SendJSON(ctx context.Context, method, path string, in, out any, cfg PipelineConfig) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.Fetch(ctx, c.URL(path), RequestOptions{Method: method, Body: body}, cfg)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}
