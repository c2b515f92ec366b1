package filestore

import (
	"io"
	"strings"
	"time"

	"github.com/koustreak/mdbread/internal/errs"
)

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "dumps/Customers.csv").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	ContentType  string
	ETag         string
	LastModified time.Time

	// IsDir is true when the entry represents a virtual directory (prefix),
	// not an actual stored object.
	IsDir bool
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	Prefix string

	// Recursive lists everything under Prefix instead of grouping by
	// virtual directories.
	Recursive bool

	// Limit caps the number of results returned. 0 means no limit.
	Limit int
}

// ParseLocation splits "bucket/key" into its parts. A location without a
// slash names a key in defaultBucket, when one is configured.
func ParseLocation(loc, defaultBucket string) (bucket, key string, err error) {
	loc = strings.TrimPrefix(loc, "/")

	bucket, key, found := strings.Cut(loc, "/")
	if !found {
		bucket, key = defaultBucket, loc
	}
	if bucket == "" || key == "" {
		return "", "", errs.Newf(errs.ErrKindInvalidInput, "object location %q must look like bucket/key", loc)
	}
	return bucket, key, nil
}
