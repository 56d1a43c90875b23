package testutil

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visionlake/geocol/pkg/config"
	"github.com/visionlake/geocol/pkg/objectstore"
	"github.com/visionlake/geocol/pkg/session"
)

// Environment variables gating the cloud storage fixtures. When unset, the
// corresponding fixture skips the test instead of failing.
const (
	// S3URLEnv points at an s3:// base URL used for temporary test data
	S3URLEnv = "GEOCOL_TEST_S3_URL"
	// GCSURLEnv points at a gs:// base URL used for temporary test data
	GCSURLEnv = "GEOCOL_TEST_GCS_URL"
)

// NewSession opens a throwaway session rooted at a temporary warehouse.
// The session is closed when the test completes.
func NewSession(t *testing.T) *session.Session {
	t.Helper()

	ctx, cancel := TestContext(t)
	t.Cleanup(cancel)

	cfg := config.Default("test-session", t.TempDir())
	sess, err := session.Open(ctx, cfg)
	require.NoError(t, err, "failed to open test session")

	t.Cleanup(func() {
		require.NoError(t, sess.Close())
	})
	return sess
}

// S3TempDir creates a temporary S3 prefix for test data and returns the
// store scoped to the test bucket together with the prefix. The test is
// skipped when GEOCOL_TEST_S3_URL is unset or the bucket is unreachable
// with the ambient credentials. The prefix is removed on cleanup, best
// effort.
func S3TempDir(t *testing.T) (objectstore.Store, string) {
	t.Helper()

	baseURL := os.Getenv(S3URLEnv)
	if baseURL == "" {
		t.Skipf("skipping: %s is not set", S3URLEnv)
	}

	parsed, err := url.Parse(baseURL)
	require.NoError(t, err, "invalid %s", S3URLEnv)
	if parsed.Scheme != "s3" {
		t.Fatalf("%s must be a valid s3:// URL, got %q", S3URLEnv, baseURL)
	}

	ctx, cancel := TestContext(t)
	t.Cleanup(cancel)

	logger := TestLogger(t)
	store, err := objectstore.NewS3(ctx, parsed.Host, "", logger)
	require.NoError(t, err, "failed to create S3 client")

	if err := store.Probe(ctx); err != nil {
		t.Skipf("skipping: S3 bucket not reachable: %v", err)
	}

	prefix := tempPrefix(parsed.Path)
	registerCleanup(t, store, prefix, logger)
	return store, prefix
}

// GCSTempDir creates a temporary GCS prefix for test data, mirroring
// S3TempDir for gs:// URLs gated by GEOCOL_TEST_GCS_URL.
func GCSTempDir(t *testing.T) (objectstore.Store, string) {
	t.Helper()

	baseURL := os.Getenv(GCSURLEnv)
	if baseURL == "" {
		t.Skipf("skipping: %s is not set", GCSURLEnv)
	}

	parsed, err := url.Parse(baseURL)
	require.NoError(t, err, "invalid %s", GCSURLEnv)
	if parsed.Scheme != "gs" {
		t.Fatalf("%s must be a valid gs:// URL, got %q", GCSURLEnv, baseURL)
	}

	ctx, cancel := TestContext(t)
	t.Cleanup(cancel)

	logger := TestLogger(t)
	store, err := objectstore.NewGCS(ctx, parsed.Host, logger)
	require.NoError(t, err, "failed to create GCS client")

	if err := store.Probe(ctx); err != nil {
		t.Skipf("skipping: GCS bucket not reachable: %v", err)
	}

	prefix := tempPrefix(parsed.Path)
	registerCleanup(t, store, prefix, logger)
	return store, prefix
}

// tempPrefix joins the base path with a random suffix, without a leading
// slash in the resulting object key.
func tempPrefix(basePath string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	base := strings.Trim(basePath, "/")
	if base == "" {
		return suffix
	}
	return base + "/" + suffix
}

// registerCleanup deletes the temporary prefix after the test. Cleanup is
// best effort; leftover test data is logged, not fatal.
func registerCleanup(t *testing.T, store objectstore.Store, prefix string, logger *zap.Logger) {
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.RemovePrefix(ctx, prefix); err != nil {
			logger.Warn("could not delete temporary prefix",
				zap.String("prefix", prefix), zap.Error(err))
		}
		_ = store.Close()
	})
}
