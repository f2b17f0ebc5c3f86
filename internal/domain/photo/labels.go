package photo

import "strings"

// LabelSeparator joins labels inside an index document.
const LabelSeparator = ","

// CustomLabelsKey is the user metadata key holding comma-joined custom tags.
const CustomLabelsKey = "customlabels"

// Metadata is the user metadata attached to a stored object.
type Metadata struct {
	CustomLabels *string
}

// MetadataFromMap extracts the custom labels entry from a raw metadata map.
func MetadataFromMap(m map[string]string) Metadata {
	if v, ok := m[CustomLabelsKey]; ok {
		return Metadata{CustomLabels: &v}
	}
	return Metadata{}
}

// MergeLabels joins detected labels, appends custom labels, then lowercases the whole string once.
// Empty parts are dropped so the result never starts or ends with a separator.
func MergeLabels(detected []string, meta Metadata) string {
	combined := strings.Join(detected, LabelSeparator)
	if meta.CustomLabels != nil && *meta.CustomLabels != "" {
		if combined == "" {
			combined = *meta.CustomLabels
		} else {
			combined += LabelSeparator + *meta.CustomLabels
		}
	}
	return strings.ToLower(combined)
}
