package r2

import (
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ArchivedDocument describes a processed document kept in the bucket
type ArchivedDocument struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// NewArchivedDocumentFromAWS creates an ArchivedDocument from an AWS SDK Object
func NewArchivedDocumentFromAWS(obj types.Object) ArchivedDocument {
	doc := ArchivedDocument{
		Key:  aws.ToString(obj.Key),
		Size: aws.ToInt64(obj.Size),
	}
	doc.Name = path.Base(doc.Key)

	if obj.LastModified != nil {
		doc.LastModified = *obj.LastModified
	}

	return doc
}

// ArchiveKey joins the archive prefix and a file name into an object key
func ArchiveKey(prefix, name string) string {
	return normalizePrefix(prefix) + path.Base(name)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
