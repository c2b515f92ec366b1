package filestore

import (
	"time"

	"github.com/koustreak/mdbread/internal/errs"
)

// MaxPresignExpiry is the longest validity S3 accepts for a presigned URL.
const MaxPresignExpiry = 7 * 24 * time.Hour

// minPartSize is the smallest multipart chunk S3 accepts.
const minPartSize = 5 << 20

// Config describes the S3-compatible store that dumps are uploaded to and
// Access files are pulled from.
type Config struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string // empty for MinIO

	// DefaultBucket is used for object locations that name only a key.
	DefaultBucket string

	// PartSize is the multipart chunk size for uploads of unknown length.
	// Zero lets the SDK choose.
	PartSize uint64
}

// DefaultConfig returns a plain-HTTP config for a local MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Validate reports settings no backend could connect with.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errs.New(errs.ErrKindConfiguration, "filestore endpoint is not set")
	}
	if c.PartSize != 0 && c.PartSize < minPartSize {
		return errs.Newf(errs.ErrKindConfiguration, "filestore part size %d is below the 5 MiB minimum", c.PartSize)
	}
	return nil
}

// CheckPresignExpiry rejects link lifetimes S3 would refuse.
func CheckPresignExpiry(d time.Duration) error {
	if d <= 0 || d > MaxPresignExpiry {
		return errs.Newf(errs.ErrKindInvalidInput, "presign expiry %s must be between 1s and %s", d, MaxPresignExpiry)
	}
	return nil
}
