// Package api defines the HTTP interface of `splitsave serve`: request and
// response types, the ServerInterface implemented by internal/server and its
// chi wiring.
package api

import "time"

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for SaveResponseKind.
const (
	Single SaveResponseKind = "single"
	Tiled  SaveResponseKind = "tiled"
)

// Defines values for ValidationErrorResponseError.
const (
	VALIDATIONERROR ValidationErrorResponseError = "VALIDATION_ERROR"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	// Details Additional error details
	Details *map[string]interface{} `json:"details,omitempty"`

	// Error Error code
	Error string `json:"error"`

	// Message Human-readable error message
	Message string `json:"message"`

	// RequestId Request ID for tracking
	RequestId *string `json:"request_id,omitempty"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`

	// Uptime Server uptime in seconds
	Uptime  *int    `json:"uptime,omitempty"`
	Version *string `json:"version,omitempty"`
}

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// SaveResponse defines model for SaveResponse.
type SaveResponse struct {
	// Directory Tile directory relative to the server root, tiled saves only
	Directory *string `json:"directory,omitempty"`

	// Files Written files relative to the server root, in tile order
	Files  []string `json:"files"`
	Height int      `json:"height"`

	Kind SaveResponseKind `json:"kind"`

	// Message Human-readable outcome
	Message   string  `json:"message"`
	RequestId *string `json:"request_id,omitempty"`

	// Steps Number of tiles, tiled saves only
	Steps *int `json:"steps,omitempty"`

	// Tried Tile counts attempted before the save succeeded
	Tried []int `json:"tried,omitempty"`
	Width int   `json:"width"`
}

// SaveResponseKind defines model for SaveResponse.Kind.
type SaveResponseKind string

// ValidationErrorResponse defines model for ValidationErrorResponse.
type ValidationErrorResponse struct {
	Error            ValidationErrorResponseError `json:"error"`
	Message          string                       `json:"message"`
	RequestId        *string                      `json:"request_id,omitempty"`
	ValidationErrors []struct {
		Code    *string `json:"code,omitempty"`
		Field   string  `json:"field"`
		Message string  `json:"message"`
	} `json:"validation_errors"`
}

// ValidationErrorResponseError defines model for ValidationErrorResponse.Error.
type ValidationErrorResponseError string

// SaveImageParams defines parameters for SaveImage.
type SaveImageParams struct {
	// Name File name of the saved image; its extension selects the format
	Name string `form:"name" json:"name"`

	// Quality Encoder quality for lossy formats
	Quality *int `form:"quality,omitempty" json:"quality,omitempty"`
}
