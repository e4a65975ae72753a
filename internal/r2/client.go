package r2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	appconfig "github.com/HaiFongPan/folio-cli/internal/config"
)

// Client holds the S3 client of the result archive
type Client struct {
	s3Client *s3.Client
	bucket   string
	endpoint string
}

// NewClient validates the archive credentials and creates the S3 client
func NewClient(cfg *appconfig.R2Config) (*Client, error) {
	if err := appconfig.ValidateR2Config(cfg); err != nil {
		return nil, fmt.Errorf("archive is not configured: %w", err)
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := &Client{bucket: cfg.BucketName, endpoint: Endpoint(cfg)}
	c.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.endpoint)
	})

	logrus.WithFields(logrus.Fields{"bucket": c.bucket, "endpoint": c.endpoint}).Debug("Archive client ready")
	return c, nil
}

// Endpoint resolves the S3 endpoint; "auto" or empty means the account's R2 endpoint
func Endpoint(cfg *appconfig.R2Config) string {
	if cfg.Endpoint == "" || cfg.Endpoint == "auto" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}
	return cfg.Endpoint
}

// GetS3Client returns the underlying S3 client
func (c *Client) GetS3Client() *s3.Client {
	return c.s3Client
}

// GetBucketName returns the archive bucket
func (c *Client) GetBucketName() string {
	return c.bucket
}
