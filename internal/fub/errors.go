package fub

import "fmt"

// APIError describes a failed FollowUpBoss API call: a non-2xx response
// or a transport failure while paginating. StatusCode is zero when the
// request never produced a response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fub: %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("fub: %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}
