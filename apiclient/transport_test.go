package apiclient_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-agri-client/apiclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestChainTransport_Order(t *testing.T) {
	var order []string
	mark := func(name string) apiclient.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody, Request: r}, nil
	})

	rt := apiclient.ChainTransport(base, mark("first"), mark("second"))
	req := httptest.NewRequest(http.MethodGet, "http://api.test/x", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, []string{"first", "second", "base"}, order)
}

func TestUserAgentAndWireLogging(t *testing.T) {
	var agent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.TraceLevel)
	hc := &http.Client{Transport: apiclient.ChainTransport(nil, apiclient.UserAgent("agri-cli/test"), apiclient.WireLogging(logger))}

	c, err := apiclient.New(ts.URL, newStore(t, mintToken(t, time.Hour)), apiclient.WithHTTPClient(hc))
	require.NoError(t, err)

	resp, err := c.Fetch(t.Context(), c.URL("/ping"), apiclient.RequestOptions{}, apiclient.PipelineConfig{})
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "agri-cli/test", agent)
	require.Contains(t, buf.String(), `"status":200`)
	require.NotContains(t, buf.String(), "Bearer")
}
