package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// BackendErrorBody mirrors the envelope the commerce backend wraps around
// every response. Only the fields needed to surface a failure are decoded.
type BackendErrorBody struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError that preserves the backend's status code and message.
// Transport failures are never swallowed or remapped: the caller (and
// ultimately the UI) sees exactly what the backend reported.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Upstream(resp.StatusCode,
			fmt.Sprintf("%s returned status %d (failed to read body: %v)", serviceName, resp.StatusCode, err))
	}

	// Try the structured envelope first.
	var body BackendErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Message != "" {
		status := body.StatusCode
		if status == 0 {
			status = resp.StatusCode
		}
		return apperrors.Upstream(status, fmt.Sprintf("%s: %s", serviceName, body.Message))
	}

	// Fallback: unstructured error body.
	msg := strings.TrimSpace(string(bodyBytes))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return apperrors.Upstream(resp.StatusCode, fmt.Sprintf("%s returned status %d: %s", serviceName, resp.StatusCode, msg))
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
