package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionAPI is the Rekognition subset used for label and face detection.
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput,
		optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectFaces(ctx context.Context, in *rekognition.DetectFacesInput,
		optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// RecognizerConfig bounds what Rekognition returns. Zero values leave the service defaults.
type RecognizerConfig struct {
	MaxLabels     int
	MinConfidence float64
}

// Recognizer detects labels with Rekognition, reading the image straight from S3.
type Recognizer struct {
	client RekognitionAPI
	cfg    RecognizerConfig
}

// NewRecognizer creates a Rekognition recognizer.
func NewRecognizer(client RekognitionAPI, cfg RecognizerConfig) *Recognizer {
	return &Recognizer{client: client, cfg: cfg}
}

// DetectLabels returns label names in the order Rekognition reports them.
func (r *Recognizer) DetectLabels(ctx context.Context, bucket, key string) ([]string, error) {
	in := &rekognition.DetectLabelsInput{Image: s3Image(bucket, key)}
	if r.cfg.MaxLabels > 0 {
		in.MaxLabels = aws.Int32(int32(r.cfg.MaxLabels)) //nolint:gosec // bounded by config validation
	}
	if r.cfg.MinConfidence > 0 {
		in.MinConfidence = aws.Float32(float32(r.cfg.MinConfidence))
	}

	start := time.Now()
	out, err := r.client.DetectLabels(ctx, in)
	if err = observe("rekognition", "detect_labels", start, err); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		if name := aws.ToString(l.Name); name != "" {
			labels = append(labels, name)
		}
	}
	return labels, nil
}

// DetectFaces returns the number of faces found in the image.
func (r *Recognizer) DetectFaces(ctx context.Context, bucket, key string) (int, error) {
	start := time.Now()
	out, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{Image: s3Image(bucket, key)})
	if err = observe("rekognition", "detect_faces", start, err); err != nil {
		return 0, err
	}
	return len(out.FaceDetails), nil
}

func s3Image(bucket, key string) *types.Image {
	return &types.Image{S3Object: &types.S3Object{
		Bucket: aws.String(bucket),
		Name:   aws.String(key),
	}}
}
