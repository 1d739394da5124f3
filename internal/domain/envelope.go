package domain

import "encoding/json"

// StatusSuccess is the application-level success marker carried in the
// statusCode field of every upstream response body.
const StatusSuccess = "ESS-000"

// Envelope is the wire shape of every upstream API response:
// a string status code, a human-readable message, and an optional
// payload object whose shape depends on the endpoint.
type Envelope struct {
	StatusCode string          `json:"statusCode"`
	Message    string          `json:"message"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// OK reports whether the envelope carries the application-level success
// marker together with a payload. A success code without a payload is
// treated as a failure, matching the login contract.
func (e Envelope) OK() bool {
	return e.StatusCode == StatusSuccess && len(e.Response) > 0 && string(e.Response) != "null"
}
