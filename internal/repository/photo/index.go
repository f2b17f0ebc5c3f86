package photo

import (
	"github.com/kailas-cloud/photodex/internal/db"
)

// Indexed attribute names.
const (
	FieldObjectKey        = "objectKey"
	FieldBucket           = "bucket"
	FieldLabels           = "labels"
	FieldCreatedTimestamp = "createdTimestamp"
)

// buildIndex describes the photo index: JSON documents under the photo key prefix,
// labels as full text and the rest as exact-match tags.
func buildIndex(name, prefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		OnJSON().
		Prefix(prefix).
		TagAs("$."+FieldObjectKey, FieldObjectKey).
		TagAs("$."+FieldBucket, FieldBucket).
		TextAs("$."+FieldLabels, FieldLabels).
		TagAs("$."+FieldCreatedTimestamp, FieldCreatedTimestamp).
		Build()
}
