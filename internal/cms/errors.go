package cms

import (
	"fmt"
	"net/http"
)

// APIError is a normalized CMS failure. It keeps the raw response body for
// diagnostics and carries a remediation hint so pipeline errors tell the
// operator what to check rather than just echoing a status code.
type APIError struct {
	StatusCode int
	Operation  string
	Message    string
	Hint       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("cms %s failed (%d): %s (%s)", e.Operation, e.StatusCode, e.Message, e.Hint)
	}
	return fmt.Sprintf("cms %s failed (%d): %s", e.Operation, e.StatusCode, e.Message)
}

// hintFor maps a status code to the most likely fix.
func hintFor(statusCode int) string {
	switch {
	case statusCode == http.StatusUnauthorized:
		return "check the management token"
	case statusCode == http.StatusForbidden:
		return "token lacks permission for this content type"
	case statusCode == http.StatusNotFound:
		return "entry or content type missing, check the space configuration"
	case statusCode == http.StatusUnprocessableEntity:
		return "entry rejected by CMS validation"
	case statusCode >= http.StatusInternalServerError:
		return "CMS outage, retry later"
	default:
		return ""
	}
}
