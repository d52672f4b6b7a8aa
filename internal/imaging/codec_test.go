package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCodec_DecodeGrayKeepsOneChannel(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 4, 2))
	src.SetGray(3, 1, color.Gray{Y: 200})
	path := writePNG(t, dir, "gray.png", src)

	buf, err := (&FileCodec{}).Decode(path)
	require.NoError(t, err)
	assert.Equal(t, Shape{Width: 4, Height: 2, Channels: 1, Depth: Depth8U}, buf.Shape())
	assert.Equal(t, byte(200), buf.Row(1)[3])
	assert.Zero(t, buf.Refs(), "decoded buffers start unshared")
}

func TestFileCodec_DecodeGray16(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray16(image.Rect(0, 0, 2, 2))
	src.SetGray16(1, 0, color.Gray16{Y: 0x1234})
	path := writePNG(t, dir, "gray16.png", src)

	img := &Image{}
	require.NoError(t, img.LoadFromFile(path))

	depth, err := img.PixelDepth()
	require.NoError(t, err)
	assert.Equal(t, Depth16U, depth)
	got, err := img.Pixel(1, 0)
	require.NoError(t, err)
	assert.Equal(t, color.Gray16{Y: 0x1234}, got)
}

func TestFileCodec_DecodeColor(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	src.Set(2, 2, color.NRGBA{10, 20, 30, 255})
	path := writePNG(t, dir, "color.png", src)

	buf, err := (&FileCodec{}).Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 3, buf.Shape().Channels)
	assert.Equal(t, []byte{10, 20, 30}, buf.Row(2)[6:9])
}

func TestFileCodec_DecodeErrors(t *testing.T) {
	dir := t.TempDir()
	codec := &FileCodec{}

	_, err := codec.Decode(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))
	_, err = codec.Decode(bad)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFileCodec_Encode(t *testing.T) {
	dir := t.TempDir()
	buf, err := NewPixelBuffer(8, 8, 3, Depth8U)
	require.NoError(t, err)
	codec := &FileCodec{JPEGQuality: 90}

	tests := []struct {
		name   string
		file   string
		format Format
	}{
		{"png by extension", "a.png", FormatAuto},
		{"jpeg by extension", "a.jpg", FormatAuto},
		{"explicit bmp", "a.out", FormatBMP},
		{"explicit tiff", "a.img", FormatTIFF},
		{"gif by extension", "a.gif", FormatAuto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, codec.Encode(buf, path, tt.format))

			back, err := codec.Decode(path)
			require.NoError(t, err)
			assert.Equal(t, 8, back.Shape().Width)
			assert.Equal(t, 8, back.Shape().Height)
		})
	}

	err = codec.Encode(buf, filepath.Join(dir, "a.unknown"), FormatAuto)
	assert.ErrorIs(t, err, ErrEncode)
	err = codec.Encode(buf, filepath.Join(dir, "missing-dir", "a.png"), FormatAuto)
	assert.ErrorIs(t, err, ErrEncode)
}

func TestFromImageMode_GrayReduction(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{255, 0, 0, 255})
	src.Set(6, 5, color.RGBA{0x80, 0x80, 0x80, 255})

	buf, err := FromImageMode(src, Gray)
	require.NoError(t, err)
	assert.Equal(t, Shape{Width: 2, Height: 1, Channels: 1, Depth: Depth8U}, buf.Shape())
	assert.Equal(t, []byte{76, 0x80}, buf.Row(0))
}
