package types

// ErrorEnvelope is the body of every failed JSON response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// SuccessFields are merged into a {"success": true} body.
type SuccessFields map[string]any
