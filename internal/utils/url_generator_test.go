package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPresigner 模拟 S3 预签名客户端
type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key), opts.Expires)
	req, _ := args.Get(0).(*v4.PresignedHTTPRequest)
	return req, args.Error(1)
}

func TestURLGenerator_Presigned(t *testing.T) {
	presigner := &MockPresigner{}
	presigner.On("PresignGetObject", "docs", "foliados/Foliado_acta.pdf", DefaultURLExpiry).
		Return(&v4.PresignedHTTPRequest{URL: "https://signed.example/x"}, nil)

	g := NewURLGenerator(presigner, "docs", "")
	u, err := g.GetPreferredURL(context.Background(), "foliados/Foliado_acta.pdf")

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/x", u)
	presigner.AssertExpectations(t)
}

// TestURLGenerator_PublicDomain 测试配置公共域名时不再预签名
func TestURLGenerator_PublicDomain(t *testing.T) {
	presigner := &MockPresigner{}
	g := NewURLGenerator(presigner, "docs", "https://files.example.org/")

	u, err := g.GetPreferredURL(context.Background(), "foliados/Foliado acta.pdf")

	require.NoError(t, err)
	assert.Equal(t, "https://files.example.org/foliados/Foliado%20acta.pdf", u)
	presigner.AssertNotCalled(t, "PresignGetObject")
}

func TestURLGenerator_PresignError(t *testing.T) {
	presigner := &MockPresigner{}
	presigner.On("PresignGetObject", "docs", "k", DefaultURLExpiry).Return(nil, errors.New("no credentials"))

	_, err := NewURLGenerator(presigner, "docs", "").GeneratePresignedURL(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}
