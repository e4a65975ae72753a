package utils

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// DefaultURLExpiry is how long presigned links to archived results stay valid
const DefaultURLExpiry = time.Hour

// Presigner is the part of s3.PresignClient used for download links
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// URLGenerator builds download links for archived results
type URLGenerator struct {
	presigner    Presigner
	bucketName   string
	publicDomain string
	expiry       time.Duration
}

// NewURLGenerator creates a generator. When publicDomain is set, links
// point at it instead of being presigned.
func NewURLGenerator(presigner Presigner, bucketName, publicDomain string) *URLGenerator {
	return &URLGenerator{
		presigner:    presigner,
		bucketName:   bucketName,
		publicDomain: publicDomain,
		expiry:       DefaultURLExpiry,
	}
}

// GetPreferredURL returns the public link if a domain is configured, else a presigned one
func (g *URLGenerator) GetPreferredURL(ctx context.Context, key string) (string, error) {
	if u := g.GenerateCustomDomainURL(key); u != "" {
		return u, nil
	}
	return g.GeneratePresignedURL(ctx, key)
}

// GenerateCustomDomainURL returns "" when no public domain is configured
func (g *URLGenerator) GenerateCustomDomainURL(key string) string {
	domain := g.publicDomain
	if domain == "" {
		return ""
	}

	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")

	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://%s/%s", domain, strings.Join(segments, "/"))
}

// GeneratePresignedURL returns a GET link valid for the generator's expiry
func (g *URLGenerator) GeneratePresignedURL(ctx context.Context, key string) (string, error) {
	request, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = g.expiry
	})
	if err != nil {
		logrus.Errorf("Failed to generate presigned URL for %s: %v", key, err)
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return request.URL, nil
}
