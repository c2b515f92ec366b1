package filestore

import (
	"testing"
	"time"

	"github.com/koustreak/mdbread/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name          string
		loc           string
		defaultBucket string
		wantBucket    string
		wantKey       string
		wantErr       bool
	}{
		{name: "bucket and key", loc: "archives/2019/northwind.mdb", wantBucket: "archives", wantKey: "2019/northwind.mdb"},
		{name: "leading slash", loc: "/archives/northwind.mdb", wantBucket: "archives", wantKey: "northwind.mdb"},
		{name: "default bucket", loc: "northwind.mdb", defaultBucket: "dumps", wantBucket: "dumps", wantKey: "northwind.mdb"},
		{name: "no bucket", loc: "northwind.mdb", wantErr: true},
		{name: "empty key", loc: "archives/", wantErr: true},
		{name: "empty", loc: "", defaultBucket: "dumps", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseLocation(tt.loc, tt.defaultBucket)
			if tt.wantErr {
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no endpoint", mutate: func(c *Config) { c.Endpoint = "" }, wantErr: true},
		{name: "part size too small", mutate: func(c *Config) { c.PartSize = 1 << 20 }, wantErr: true},
		{name: "part size ok", mutate: func(c *Config) { c.PartSize = 16 << 20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errs.IsConfiguration(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckPresignExpiry(t *testing.T) {
	assert.NoError(t, CheckPresignExpiry(time.Hour))
	assert.NoError(t, CheckPresignExpiry(MaxPresignExpiry))
	assert.True(t, errs.IsInvalidInput(CheckPresignExpiry(0)))
	assert.True(t, errs.IsInvalidInput(CheckPresignExpiry(MaxPresignExpiry+time.Second)))
}
