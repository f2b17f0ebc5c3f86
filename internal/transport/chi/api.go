package chi

// ErrorResponseCode is the machine-readable error code in error responses.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeEmptyQuery         ErrorResponseCode = "empty_query"
	ErrorResponseCodeInvalidEvent       ErrorResponseCode = "invalid_event"
	ErrorResponseCodePhotoNotFound      ErrorResponseCode = "photo_not_found"
	ErrorResponseCodeSearchBackendError ErrorResponseCode = "search_backend_error"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// QueryResponse is the body of GET /search.
type QueryResponse struct {
	StatusCode        int       `json:"statusCode"`
	ExtractedKeywords []string  `json:"extractedKeywords"`
	Body              QueryBody `json:"body"`
}

// QueryBody holds the result locators of a query.
type QueryBody struct {
	ImagePaths []string `json:"imagePaths"`
}

// LookupResponse is the body of GET /admin/lookup.
type LookupResponse struct {
	Query string       `json:"query"`
	Hits  []LookupItem `json:"hits"`
}

// LookupItem is one administrative lookup hit.
type LookupItem struct {
	ObjectKey string  `json:"objectKey"`
	Score     float64 `json:"score"`
	ImagePath string  `json:"imagePath"`
}

// PhotoResponse is the body of GET /admin/photos/{key}.
type PhotoResponse struct {
	ObjectKey        string `json:"objectKey"`
	Bucket           string `json:"bucket"`
	CreatedTimestamp string `json:"createdTimestamp"`
	Labels           string `json:"labels"`
}

// UploadResponse is the body of a processed POST /events/upload.
type UploadResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the body of GET /admin/stats.
type StatsResponse struct {
	Index     string `json:"index"`
	Documents int    `json:"documents"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}
