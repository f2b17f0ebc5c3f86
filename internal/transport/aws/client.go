// Package aws adapts AWS services (S3, Rekognition, Lex) to the photodex contracts.
package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/kailas-cloud/photodex/internal/metrics"
)

// Config holds the shared AWS client settings.
type Config struct {
	Region      string
	MaxAttempts int
	// Timeout bounds each HTTP attempt, connect included.
	Timeout time.Duration
	// S3Endpoint points the S3 client at an S3-compatible store when set.
	S3Endpoint   string
	UsePathStyle bool
}

// Clients bundles the SDK clients built from one shared configuration.
type Clients struct {
	S3          *s3.Client
	Rekognition *rekognition.Client
	Lex         *lexruntimeservice.Client
}

// NewClients loads the default credential chain and builds every client.
func NewClients(ctx context.Context, cfg Config) (*Clients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Clients{
		S3:          s3Client,
		Rekognition: rekognition.NewFromConfig(awsCfg),
		Lex:         lexruntimeservice.NewFromConfig(awsCfg),
	}, nil
}

func loadOptions(cfg Config) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(cfg.Timeout)))
	}
	return opts
}

// observe records provider metrics for one SDK call and annotates API errors with their code.
func observe(provider, operation string, start time.Time, err error) error {
	metrics.ObserveProvider(provider, operation, start, err)
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s: %s: %w", provider, operation, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s %s: %w", provider, operation, err)
}
