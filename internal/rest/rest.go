package rest

// ErrorResponse is the JSON error envelope returned by all API handlers.
type ErrorResponse struct {
	Error string `json:"error"`
	// Violations carries field-level validation messages when present.
	Violations []Violation `json:"violations,omitempty"`
}

// Violation describes a single invalid field in a rejected request.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
