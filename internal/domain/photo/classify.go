package photo

import "strings"

// photoMarkers are matched anywhere in the key, not only as an extension.
var photoMarkers = []string{"jpeg", "png", "jpg"}

// IsPhoto reports whether the object key looks like a photo upload.
// The check is a loose substring match: "not_a_jpgfile.txt" counts as a photo.
func IsPhoto(key string) bool {
	for _, m := range photoMarkers {
		if strings.Contains(key, m) {
			return true
		}
	}
	return false
}
