package avatar

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskmanager-server/internal/model"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{name: "png", filename: "me.png", size: 10},
		{name: "upper case jpeg", filename: "ME.JPEG", size: 10},
		{name: "jpg at limit", filename: "me.jpg", size: MaxUploadSize},
		{name: "too large", filename: "me.jpg", size: MaxUploadSize + 1, wantErr: true},
		{name: "pdf", filename: "cv.pdf", size: 10, wantErr: true},
		{name: "no extension", filename: "avatar", size: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Check(tt.filename, tt.size)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, model.KindValidation, model.KindOf(err))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	var pngBuf, jpegBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, jpeg.Encode(&jpegBuf, src, nil))

	for name, input := range map[string][]byte{"png": pngBuf.Bytes(), "jpeg": jpegBuf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := Normalize(bytes.NewReader(input))
			require.NoError(t, err)

			img, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, Side, img.Bounds().Dx())
			assert.Equal(t, Side, img.Bounds().Dy())
		})
	}
}

func TestNormalize_NotAnImage(t *testing.T) {
	t.Parallel()

	_, err := Normalize(strings.NewReader("plain text"))
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestNormalize_OversizedDimensions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// IHDR data starts after the 8-byte signature and the chunk length and type.
	binary.BigEndian.PutUint32(data[16:20], 50_000)
	binary.BigEndian.PutUint32(data[20:24], 50_000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 50_000, cfg.Width)

	_, err = Normalize(bytes.NewReader(data))
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
	assert.Equal(t, "image is too large, limit is 10000x10000 pixels", err.Error())
}

func TestKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("5f0c4a8e-9a43-4a3c-b8c4-3b1d9c2e7f10")
	assert.Equal(t, "avatars/5f0c4a8e-9a43-4a3c-b8c4-3b1d9c2e7f10.png", Key(id))
}
