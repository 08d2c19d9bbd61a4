package badgr_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-badgr-client/badgr"
)

func TestEncodeImagePNG(t *testing.T) {
	content := []byte("not really a png, but content enough")
	path := filepath.Join(t.TempDir(), "badge.png")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	encoded, err := badgr.EncodeImage(path)
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(content), encoded)
}

func TestEncodeImageSVG(t *testing.T) {
	content := []byte("<svg></svg>")
	path := filepath.Join(t.TempDir(), "badge.SVG")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	encoded, err := badgr.EncodeImage(path)
	require.NoError(t, err)
	require.Equal(t, "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString(content), encoded)
}

func TestEncodeImageUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.gif")
	require.NoError(t, os.WriteFile(path, []byte("gif"), 0o600))

	_, err := badgr.EncodeImage(path)
	require.ErrorIs(t, err, badgr.ErrUnsupportedImageFormat)
}

func TestEncodeImageMissingFile(t *testing.T) {
	_, err := badgr.EncodeImage(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}
