package apiclient

import (
	"context"
	"net/http"
)

// BuildHeaders returns the headers every authenticated request carries: the
// bearer token when one is stored, and a JSON content type unless the body is
// multipart. Multipart requests must carry the boundary of their own writer,
// so no Content-Type is set for them here.
func (c *Client) BuildHeaders(ctx context.Context, isFormData bool) map[string]string {
	headers := map[string]string{}

	if auth, ok := c.store.AuthorizationHeader(ctx); ok {
		headers["Authorization"] = auth
	}
	if !isFormData {
		headers["Content-Type"] = "application/json"
	}
	return headers
}

// mergeHeaders layers caller headers over the decorated ones. Caller values
// replace decorated values with the same canonical key.
func mergeHeaders(decorated map[string]string, caller http.Header) http.Header {
	merged := make(http.Header, len(decorated)+len(caller))
	for k, v := range decorated {
		merged.Set(k, v)
	}
	for k, values := range caller {
		merged.Del(k)
		for _, v := range values {
			merged.Add(k, v)
		}
	}
	return merged
}
