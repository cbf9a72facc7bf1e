// Package avatar validates uploaded profile pictures and converts them to
// the stored format: a 250x250 PNG.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/dtroode/taskmanager-server/internal/model"
)

const (
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize = 1_000_000
	// Side is the width and height of a stored avatar.
	Side = 250
	// ContentType of a stored avatar.
	ContentType = "image/png"
	// MaxDimension bounds the declared width and height of an upload.
	MaxDimension = 10_000
)

// Key is the object storage key of a user's avatar.
func Key(userID uuid.UUID) string {
	return "avatars/" + userID.String() + ".png"
}

// Check validates the upload metadata before any decoding happens.
func Check(filename string, size int64) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return model.NewValidationError("please upload an image")
	}

	if size > MaxUploadSize {
		return model.NewValidationError(fmt.Sprintf("file too large, limit is %d bytes", MaxUploadSize))
	}

	return nil
}

// Normalize decodes a JPEG or PNG image, scales it to Side x Side and
// encodes it as PNG.
func Normalize(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, model.NewValidationError("please upload an image")
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, model.NewValidationError(fmt.Sprintf("image is too large, limit is %dx%d pixels", MaxDimension, MaxDimension))
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, model.NewValidationError("please upload an image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, Side, Side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
