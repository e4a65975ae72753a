package utils

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// PDFContentType is the only type the preview endpoint accepts
const PDFContentType = "application/pdf"

// DetectContentType detects the MIME type of a file using multiple methods
func DetectContentType(filePath string, reader io.Reader) (string, error) {
	// The declared type comes from the extension, the way a browser reports it
	ext := strings.ToLower(filepath.Ext(filePath))
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return stripParams(contentType), nil
	}

	// No usable extension, sniff the header
	if reader != nil {
		mt, err := mimetype.DetectReader(reader)
		if err != nil {
			return "", err
		}
		if mt.String() != "application/octet-stream" {
			return stripParams(mt.String()), nil
		}
	}

	return "application/octet-stream", nil
}

// IsPDF reports whether the content type denotes a PDF document
func IsPDF(contentType string) bool {
	return stripParams(contentType) == PDFContentType
}

func stripParams(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}
