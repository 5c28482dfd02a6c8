package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// RootResponse is served on GET /
type RootResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Docs    *string `json:"docs"`
}

// HealthResponse is served on GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	ModelLoaded bool   `json:"model_loaded"`
}
