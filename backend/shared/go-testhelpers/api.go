package testhelpers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"
)

// BuildAuthRequest builds a request carrying the admin bearer token. An
// empty token leaves the Authorization header unset.
func (h *TestHelper) BuildAuthRequest(method, reqURL, token string, body []byte) *http.Request {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(body))
	require.NoError(h.T, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete) &&
		len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewHTTPClient creates the client used by the integration tests.
func (h *TestHelper) NewHTTPClient() *http.Client {
	return &http.Client{}
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	// After reading, we need to restore the body so it can be read again if needed.
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}
