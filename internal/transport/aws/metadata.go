package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
)

// HeadObjectAPI is the S3 subset used for metadata reads.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// MetadataReader reads object user metadata from S3.
type MetadataReader struct {
	client HeadObjectAPI
}

// NewMetadataReader creates a metadata reader.
func NewMetadataReader(client HeadObjectAPI) *MetadataReader {
	return &MetadataReader{client: client}
}

// HeadObject returns the custom labels attached to the object, if any.
func (m *MetadataReader) HeadObject(ctx context.Context, bucket, key string) (domphoto.Metadata, error) {
	start := time.Now()
	out, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err = observe("s3", "head_object", start, err); err != nil {
		return domphoto.Metadata{}, err
	}
	return domphoto.MetadataFromMap(out.Metadata), nil
}
