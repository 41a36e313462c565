package mediastore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	require.Equal(t, "user-1/lec-9.mp4", mediastore.ObjectKey("user-1", "lec-9"))
	require.Equal(t, "__user/_.mp4", mediastore.ObjectKey("../user", ""))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := mediastore.ProvideStore(configloader.StorageConfig{Driver: "local", LocalDir: root}, nil, log.NewStdLogger(io.Discard))
	require.NoError(t, err)

	obj, err := store.Put(ctx, "u/l.mp4", strings.NewReader("video-bytes"), "video/mp4")
	require.NoError(t, err)
	require.EqualValues(t, len("video-bytes"), obj.SizeBytes)
	require.True(t, strings.HasPrefix(obj.URI, "file://"))

	dst := filepath.Join(t.TempDir(), "work", "input.mp4")
	require.NoError(t, store.Fetch(ctx, "u/l.mp4", dst))
	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "video-bytes", string(raw))

	require.ErrorIs(t, store.Fetch(ctx, "u/missing.mp4", dst), mediastore.ErrNotFound)

	_, _, err = store.SignedURL(ctx, "u/l.mp4")
	require.ErrorIs(t, err, mediastore.ErrSigningUnsupported)
}

func TestProvideStoreRequiresBucketForGCS(t *testing.T) {
	_, err := mediastore.ProvideStore(configloader.StorageConfig{Driver: "gcs"}, nil, log.NewStdLogger(io.Discard))
	require.Error(t, err)
}
