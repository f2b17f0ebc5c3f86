package photo

import (
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 form used for createdTimestamp.
const TimestampLayout = time.RFC3339Nano

// Document is the index document for one photo (immutable value object).
// ObjectKey is the primary key: a later document with the same key replaces this one.
type Document struct {
	objectKey string
	bucket    string
	createdAt string
	labels    string
}

// NewDocument validates and creates a Document stamped with createdAt.
func NewDocument(ev UploadEvent, labels string, createdAt time.Time) (Document, error) {
	if ev.ObjectKey == "" {
		return Document{}, fmt.Errorf("object key is required")
	}
	if ev.Bucket == "" {
		return Document{}, fmt.Errorf("bucket is required")
	}
	return Document{
		objectKey: ev.ObjectKey,
		bucket:    ev.Bucket,
		createdAt: createdAt.UTC().Format(TimestampLayout),
		labels:    labels,
	}, nil
}

// Reconstruct restores a Document from storage without validation.
func Reconstruct(objectKey, bucket, createdAt, labels string) Document {
	return Document{objectKey: objectKey, bucket: bucket, createdAt: createdAt, labels: labels}
}

// ObjectKey returns the document identifier.
func (d *Document) ObjectKey() string { return d.objectKey }

// Bucket returns the source bucket.
func (d *Document) Bucket() string { return d.bucket }

// CreatedTimestamp returns the ISO-8601 indexing time.
func (d *Document) CreatedTimestamp() string { return d.createdAt }

// Labels returns the comma-joined lowercase labels.
func (d *Document) Labels() string { return d.labels }
