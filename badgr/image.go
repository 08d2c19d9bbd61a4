package badgr

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var imageMIMETypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
}

// EncodeImage reads the file at path and returns it as a base64 data-URI
// string ("data:<mime>;base64,<payload>") for the image field of issuer and
// badgeclass payloads. The MIME type is resolved from the file extension;
// only png and svg are supported.
func EncodeImage(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	mimeType, ok := imageMIMETypes[ext]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedImageFormat, "%q", ext)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "[EncodeImage] read file")
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(raw)), nil
}
