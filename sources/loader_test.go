package sources_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/schedkit/webhook-relay/config"
	"github.com/schedkit/webhook-relay/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("success - loads sources from YAML", func(t *testing.T) {
		path := writeSourcesFile(t, `
sources:
  - tag: resend
    signature_header: resend-signature
    timestamp_header: resend-timestamp
    signing_secret: whsec_abc
    max_age_seconds: 600
  - tag: postmark
    signature_header: x-postmark-signature
    timestamp_header: x-postmark-timestamp
    signing_secret: whsec_def
`)

		loader := sources.NewLoader()
		require.NoError(t, loader.Load(path))

		source, err := loader.Get("resend")
		require.NoError(t, err)
		assert.Equal(t, "resend-signature", source.SignatureHeader)
		assert.Equal(t, "resend-timestamp", source.TimestampHeader)
		assert.Equal(t, "whsec_abc", source.SigningSecret)
		assert.Equal(t, 600*time.Second, source.MaxAge)

		assert.True(t, loader.Exists("postmark"))
		assert.Len(t, loader.List(), 2)
	})

	t.Run("success - max age defaults to 300 seconds", func(t *testing.T) {
		path := writeSourcesFile(t, `
sources:
  - tag: resend
    signature_header: resend-signature
    timestamp_header: resend-timestamp
    signing_secret: whsec_abc
`)

		loader := sources.NewLoader()
		require.NoError(t, loader.Load(path))

		source, err := loader.Get("resend")
		require.NoError(t, err)
		assert.Equal(t, 300*time.Second, source.MaxAge)
	})

	t.Run("error - missing file", func(t *testing.T) {
		loader := sources.NewLoader()
		err := loader.Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading sources file")
	})

	t.Run("error - malformed YAML", func(t *testing.T) {
		path := writeSourcesFile(t, "sources: [not: valid: yaml")

		loader := sources.NewLoader()
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing sources YAML")
	})

	t.Run("error - source without tag", func(t *testing.T) {
		path := writeSourcesFile(t, `
sources:
  - signature_header: resend-signature
    timestamp_header: resend-timestamp
`)

		loader := sources.NewLoader()
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tag cannot be empty")
	})
}

func TestRegister(t *testing.T) {
	t.Run("success - valid source", func(t *testing.T) {
		loader := sources.NewLoader()
		err := loader.Register(&sources.Source{
			Tag:             "resend",
			SignatureHeader: "resend-signature",
			TimestampHeader: "resend-timestamp",
			MaxAge:          300 * time.Second,
		})

		require.NoError(t, err)
		assert.True(t, loader.Exists("resend"))
	})

	t.Run("error - missing signature header", func(t *testing.T) {
		loader := sources.NewLoader()
		err := loader.Register(&sources.Source{
			Tag:             "resend",
			TimestampHeader: "resend-timestamp",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "signature_header cannot be empty")
	})

	t.Run("error - unknown tag lookup", func(t *testing.T) {
		loader := sources.NewLoader()
		_, err := loader.Get("mailgun")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "source not found")
	})
}

func TestDefault(t *testing.T) {
	cfg := &config.Config{
		SigningSecret:   "whsec_env",
		SignatureHeader: "resend-signature",
		TimestampHeader: "resend-timestamp",
		MaxAgeSeconds:   300,
	}

	source := sources.Default(cfg)

	assert.Equal(t, "resend", source.Tag)
	assert.Equal(t, "whsec_env", source.SigningSecret)
	assert.Equal(t, 300*time.Second, source.MaxAge)
	require.NoError(t, source.Validate())
}
