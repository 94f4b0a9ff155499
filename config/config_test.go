package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photowall/photowall/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validYAML = `
aws:
  region: eu-west-1
  bucket: wedding-photos
  access_key_id: AKIAEXAMPLE
  secret_access_key: secret
`

func TestLoad_Valid(t *testing.T) {
	path := writeConfigFile(t, validYAML)

	cfg, err := config.Load([]string{path}, nil)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.Equal(t, "wedding-photos", cfg.AWS.Bucket)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, 60, cfg.Upload.PresignExpirySeconds)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingBucketFailsFast(t *testing.T) {
	path := writeConfigFile(t, `
aws:
  region: eu-west-1
  access_key_id: AKIAEXAMPLE
  secret_access_key: secret
`)

	_, err := config.Load([]string{path}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bucket")
}

func TestLoad_MissingCredentialsFailFast(t *testing.T) {
	path := writeConfigFile(t, `
aws:
  region: eu-west-1
  bucket: wedding-photos
`)

	_, err := config.Load([]string{path}, nil)

	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, validYAML)
	t.Setenv("PHOTOWALL_AWS_BUCKET", "env-bucket")
	t.Setenv("PHOTOWALL_SERVER_PORT", "9090")

	cfg, err := config.Load([]string{path}, nil)

	require.NoError(t, err)
	assert.Equal(t, "env-bucket", cfg.AWS.Bucket)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	path := writeConfigFile(t, validYAML)
	t.Setenv("PHOTOWALL_AWS_BUCKET", "env-bucket")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("bucket", "", "bucket")
	require.NoError(t, flags.Set("bucket", "flag-bucket"))

	cfg, err := config.Load([]string{path}, flags)

	require.NoError(t, err)
	assert.Equal(t, "flag-bucket", cfg.AWS.Bucket)
}

func TestLoad_UnsetFlagNotBound(t *testing.T) {
	path := writeConfigFile(t, validYAML)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("bucket", "", "bucket")

	cfg, err := config.Load([]string{path}, flags)

	require.NoError(t, err)
	assert.Equal(t, "wedding-photos", cfg.AWS.Bucket)
}

func TestLoad_InvalidExpiry(t *testing.T) {
	path := writeConfigFile(t, validYAML+`
upload:
  presign_expiry_seconds: 0
`)

	_, err := config.Load([]string{path}, nil)

	assert.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	path := writeConfigFile(t, validYAML+`
server:
  env: staging
`)

	_, err := config.Load([]string{path}, nil)

	assert.Error(t, err)
}

func TestPresignExpiry(t *testing.T) {
	u := config.UploadConfig{PresignExpirySeconds: 90}
	assert.Equal(t, "1m30s", u.PresignExpiry().String())
}
