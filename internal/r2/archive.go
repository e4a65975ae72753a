package r2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// ProgressCallback 定义进度回调类型
type ProgressCallback func(uploaded, total int64, percentage float64)

// ObjectAPI 定义归档需要的 S3 接口，便于测试
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// archiveError 包装归档相关的错误
type archiveError struct {
	operation string
	path      string
	err       error
}

func (e *archiveError) Error() string {
	return fmt.Sprintf("archive %s failed for %s: %v", e.operation, e.path, e.err)
}

func (e *archiveError) Unwrap() error {
	return e.err
}

// Archiver 把处理好的文档上传到 bucket
type Archiver struct {
	api    ObjectAPI
	bucket string
	prefix string
}

// NewArchiver 创建归档器
func NewArchiver(api ObjectAPI, bucket, prefix string) *Archiver {
	return &Archiver{api: api, bucket: bucket, prefix: prefix}
}

// Archive 上传本地文件，返回最终的 object key。已存在的 key 不会被覆盖
func (a *Archiver) Archive(ctx context.Context, localPath string, callback ProgressCallback) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", &archiveError{operation: "open file", path: localPath, err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", &archiveError{operation: "get file info", path: localPath, err: err}
	}

	key, err := a.resolveKeyConflict(ctx, ArchiveKey(a.prefix, localPath))
	if err != nil {
		return "", &archiveError{operation: "check remote file", path: localPath, err: err}
	}

	var body io.Reader = file
	if callback != nil {
		body = &progressReader{reader: file, total: info.Size(), callback: callback}
	}

	_, err = a.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return "", &archiveError{operation: "upload to S3", path: localPath, err: err}
	}

	logrus.Infof("Archived %s to %s/%s", localPath, a.bucket, key)
	return key, nil
}

// ObjectExists 检查远程文件是否存在
func (a *Archiver) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := a.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return false, nil
	}
	if strings.Contains(err.Error(), "StatusCode: 404") {
		return false, nil
	}
	return false, err
}

// List 列出归档前缀下的文档
func (a *Archiver) List(ctx context.Context, prefix string, limit int32) ([]ArchivedDocument, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(normalizePrefix(a.prefix) + prefix),
	}
	if limit > 0 {
		input.MaxKeys = aws.Int32(limit)
	}

	result, err := a.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	docs := make([]ArchivedDocument, 0, len(result.Contents))
	for _, obj := range result.Contents {
		docs = append(docs, NewArchivedDocumentFromAWS(obj))
	}
	return docs, nil
}

// resolveKeyConflict 和本地保存一样，重名时追加 " (n)"
func (a *Archiver) resolveKeyConflict(ctx context.Context, key string) (string, error) {
	exists, err := a.ObjectExists(ctx, key)
	if err != nil || !exists {
		return key, err
	}

	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	for i := 1; i < 100; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		exists, err := a.ObjectExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free key for %s", key)
}

// LocalSaver is the stage the archive sink writes through
type LocalSaver interface {
	Save(ctx context.Context, name string, body io.Reader) (string, error)
}

// ArchiveSink saves locally and then copies the saved file into the bucket.
// An archive failure is logged; the local copy is the result that counts.
type ArchiveSink struct {
	local    LocalSaver
	archiver *Archiver
	progress ProgressCallback
}

// NewArchiveSink creates a sink that archives every saved result
func NewArchiveSink(local LocalSaver, archiver *Archiver) *ArchiveSink {
	return &ArchiveSink{local: local, archiver: archiver}
}

// OnProgress reports the archive upload of every following Save to cb
func (s *ArchiveSink) OnProgress(cb ProgressCallback) {
	s.progress = cb
}

// Save implements the result sink
func (s *ArchiveSink) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	localPath, err := s.local.Save(ctx, name, body)
	if err != nil {
		return "", err
	}

	if _, err := s.archiver.Archive(ctx, localPath, s.progress); err != nil {
		logrus.WithError(err).WithField("path", localPath).Warn("Result saved locally but archiving failed")
	}
	return localPath, nil
}

// progressReader 包装 io.Reader 并提供进度回调
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressCallback
}

// Read 实现 io.Reader 接口并触发进度回调
func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)

	if n > 0 {
		pr.read += int64(n)
		percentage := float64(pr.read) / float64(pr.total) * 100
		if percentage > 100 {
			percentage = 100
		}
		pr.callback(pr.read, pr.total, percentage)
	}

	return n, err
}

// Seek 实现 io.Seeker 接口，SDK 重试时需要
func (pr *progressReader) Seek(offset int64, whence int) (int64, error) {
	if seeker, ok := pr.reader.(io.Seeker); ok {
		pos, err := seeker.Seek(offset, whence)
		if err == nil {
			pr.read = pos
		}
		return pos, err
	}
	return 0, fmt.Errorf("underlying reader does not support seeking")
}
