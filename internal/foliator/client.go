// Package foliator talks to the remote foliation service.
package foliator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/folio-cli/internal/config"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
)

const (
	maxPreviewBytes = 64 << 20
	maxErrorBody    = 4 << 10
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logrus.WithField("retry", keysAndValues).Error(msg)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logrus.WithField("retry", keysAndValues).Debug(msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logrus.WithField("retry", keysAndValues).Warn(msg)
}

// Client posts documents to the foliation service
type Client struct {
	baseURL       string
	previewPath   string
	submitPath    string
	fileField     string
	previewSuffix string

	previewHTTP *retryablehttp.Client
	submitHTTP  *http.Client
}

// Result is a successful submission; the caller must close Body
type Result struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
}

// NewClient creates a client from the service configuration
func NewClient(cfg *config.ServiceConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("service base_url is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.Timeout) * time.Second
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = retryLogger{}
	retryClient.CheckRetry = retryTransportErrors
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		previewPath:   cfg.PreviewPath,
		submitPath:    cfg.SubmitPath,
		fileField:     cfg.FileField,
		previewSuffix: cfg.PreviewSuffix,
		previewHTTP:   retryClient,
		// Uploads can take minutes; only the caller's context bounds them
		submitHTTP: &http.Client{},
	}, nil
}

// retryTransportErrors retries only when no response came back. Status
// codes are answers from the service and are reported, not retried.
func retryTransportErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return false, nil
}

// Preview posts the document with every field renamed with the preview
// suffix and returns the image payload.
func (c *Client) Preview(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot) ([]byte, error) {
	const op = "preview"

	data, err := os.ReadFile(sel.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sel.Name, err)
	}

	env, err := newEnvelope(c.fileField, sel.Name, sel.MIMEType, snap.PreviewValues(c.previewSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to build preview body: %w", err)
	}

	body, err := io.ReadAll(env.Reader(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.previewPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview request: %w", err)
	}
	req.Header.Set("Content-Type", env.contentType)

	logrus.WithFields(logrus.Fields{"file": sel.Name, "bytes": len(body)}).Debug("Requesting preview")

	resp, err := c.previewHTTP.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(op, resp)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return img, nil
}

// Submit streams the document and all fields to the form action.
// onProgress is called from the sending goroutine as bytes leave.
func (c *Client) Submit(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot, onProgress ProgressFunc) (*Result, error) {
	const op = "submit"

	file, err := os.Open(sel.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", sel.Name, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", sel.Name, err)
	}

	env, err := newEnvelope(c.fileField, sel.Name, sel.MIMEType, snap.Values())
	if err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}

	total := env.Length(info.Size())
	body := &progressReader{reader: env.Reader(file), total: total, callback: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.submitPath, io.NopCloser(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", env.contentType)

	logrus.WithFields(logrus.Fields{"file": sel.Name, "bytes": total}).Info("Uploading document")

	resp, err := c.submitHTTP.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(op, resp)
	}

	return &Result{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		ContentType:   resp.Header.Get("Content-Type"),
	}, nil
}

// statusError reads a short plain-text explanation from the body
func statusError(op string, resp *http.Response) *StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(data)),
	}
}
