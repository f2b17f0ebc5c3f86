package query

// Hit is a single search match; ranking is decided by the index engine.
type Hit struct {
	ObjectKey string
	Score     float64
}

// Locator builds the public resource locator for an object key.
// The key is appended as-is, without re-encoding.
func Locator(baseURL, objectKey string) string {
	return baseURL + objectKey
}

// Response is the query path result.
type Response struct {
	StatusCode        int
	ExtractedKeywords []string
	ImagePaths        []string
}
