// Package integration exercises the cloud storage fixtures against real
// buckets. The tests are gated on GEOCOL_TEST_S3_URL and GEOCOL_TEST_GCS_URL
// and skip when the corresponding backend is not configured.
package integration

import (
	"bytes"
	"os"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlake/geocol/pkg/dataset"
	"github.com/visionlake/geocol/pkg/geometry"
	"github.com/visionlake/geocol/pkg/objectstore"
	"github.com/visionlake/geocol/pkg/testutil"
	"github.com/visionlake/geocol/pkg/udt"
)

func TestS3TempDir(t *testing.T) {
	testutil.IntegrationTest(t)
	store, prefix := testutil.S3TempDir(t)
	exerciseStore(t, store, prefix)
}

func TestGCSTempDir(t *testing.T) {
	testutil.IntegrationTest(t)
	store, prefix := testutil.GCSTempDir(t)
	exerciseStore(t, store, prefix)
}

// exerciseStore uploads objects under the temporary prefix, lists them back,
// and verifies prefix removal.
func exerciseStore(t *testing.T, store objectstore.Store, prefix string) {
	t.Helper()
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	keys := []string{prefix + "/a.txt", prefix + "/sub/b.txt"}
	for _, key := range keys {
		require.NoError(t, store.Put(ctx, key, []byte("geocol integration test")))
	}

	listed, err := store.List(ctx, prefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, listed)

	require.NoError(t, store.RemovePrefix(ctx, prefix+"/sub"))
	listed, err = store.List(ctx, prefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{prefix + "/a.txt"}, listed)
}

func TestUploadDatasetToS3(t *testing.T) {
	testutil.IntegrationTest(t)
	store, prefix := testutil.S3TempDir(t)
	uploadAndVerifyDataset(t, store, prefix)
}

func TestUploadDatasetToGCS(t *testing.T) {
	testutil.IntegrationTest(t)
	store, prefix := testutil.GCSTempDir(t)
	uploadAndVerifyDataset(t, store, prefix)
}

// uploadAndVerifyDataset writes a small geometry dataset through the session
// warehouse, uploads the file, and lists it back under the temporary prefix.
func uploadAndVerifyDataset(t *testing.T, store objectstore.Store, prefix string) {
	t.Helper()
	sess := testutil.NewSession(t)
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	point, ok := udt.Lookup("point")
	require.True(t, ok)
	cols := []dataset.ColumnSpec{
		{Name: "frame", Type: arrow.PrimitiveTypes.Int64},
		{Name: "position", Codec: point},
	}
	rows := []map[string]interface{}{
		{"frame": int64(0), "position": geometry.NewPoint(1, 2, 3)},
	}

	path, err := sess.WriteDataset(ctx, "upload", cols, rows)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	key := prefix + "/upload.arrow"
	require.NoError(t, store.Put(ctx, key, data))

	listed, err := store.List(ctx, prefix)
	require.NoError(t, err)
	assert.Contains(t, listed, key)

	// The uploaded bytes are a readable dataset as-is.
	r, err := dataset.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()
	got, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, geometry.NewPoint(1, 2, 3), got[0]["position"])
}
