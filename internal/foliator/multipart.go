package foliator

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/HaiFongPan/folio-cli/internal/form"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// envelope is a multipart body split around the file content, so the
// file can be streamed while the total length stays known up front.
type envelope struct {
	head        []byte
	tail        []byte
	contentType string
}

func newEnvelope(fileField, fileName, fileType string, fields []form.Value) (*envelope, error) {
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fileField), quoteEscaper.Replace(fileName)))
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	h.Set("Content-Type", fileType)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, err
	}

	// The tail continues the same body. A fresh writer omits the CRLF that
	// precedes every boundary after the first part, so add it; Close always
	// writes its own.
	var tail bytes.Buffer
	if len(fields) > 0 {
		tail.WriteString("\r\n")
	}
	tw := multipart.NewWriter(&tail)
	if err := tw.SetBoundary(mw.Boundary()); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if err := tw.WriteField(f.Name, f.Value); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	return &envelope{
		head:        head.Bytes(),
		tail:        tail.Bytes(),
		contentType: mw.FormDataContentType(),
	}, nil
}

// Length is the exact body length for a file of the given size
func (e *envelope) Length(fileSize int64) int64 {
	return int64(len(e.head)) + fileSize + int64(len(e.tail))
}

// Reader streams the body with file in the middle
func (e *envelope) Reader(file io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(e.head), file, bytes.NewReader(e.tail))
}

// ProgressFunc receives bytes sent so far and the body total
type ProgressFunc func(loaded, total int64)

// progressReader 包装 io.Reader 并在每次读取后回调进度
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressFunc
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		if pr.callback != nil {
			pr.callback(pr.read, pr.total)
		}
	}
	return n, err
}
