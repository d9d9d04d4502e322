package thumbnail

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestGenerateKeepsAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 600))
	out := &bytes.Buffer{}

	require.NoError(t, New(300, 300, 85).Generate(encodePNG(t, src), out))

	thumb, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 150, thumb.Bounds().Dy())
}

func TestGenerateDoesNotUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	out := &bytes.Buffer{}

	require.NoError(t, New(300, 300, 85).Generate(encodePNG(t, src), out))

	thumb, err := jpeg.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), thumb.Bounds())
}

func TestGenerateFlattensAlphaOnWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			src.Set(x, y, color.NRGBA{A: 0})
		}
	}
	out := &bytes.Buffer{}
	require.NoError(t, New(0, 0, 0).Generate(encodePNG(t, src), out))

	thumb, err := jpeg.Decode(out)
	require.NoError(t, err)
	r, g, b, _ := thumb.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestGenerateRejectsNonImage(t *testing.T) {
	err := New(0, 0, 0).Generate(strings.NewReader("not an image"), &bytes.Buffer{})
	assert.Error(t, err)
}

// pngHeader : сигнатура и IHDR без данных изображения
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // глубина цвета
	ihdr[9] = 0 // оттенки серого

	chunk := append([]byte("IHDR"), ihdr...)
	buf := &bytes.Buffer{}
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestGenerateRejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	out := &bytes.Buffer{}
	err := New(0, 0, 0).Generate(bytes.NewReader(pngHeader(100000, 100000)), out)

	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, out.Len())
}

func TestGenerateRespectsConfiguredPixelLimit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))

	err := New(0, 0, 0).WithMaxPixels(399).Generate(encodePNG(t, src), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrTooLarge)

	out := &bytes.Buffer{}
	require.NoError(t, New(0, 0, 0).WithMaxPixels(400).Generate(encodePNG(t, src), out))
	assert.NotZero(t, out.Len())
}

func TestSupportsAndRef(t *testing.T) {
	g := New(0, 0, 0)
	assert.True(t, g.Supports("image/png"))
	assert.True(t, g.Supports("IMAGE/JPEG"))
	assert.False(t, g.Supports("application/pdf"))
	assert.Equal(t, "thumbnails/thumb_42.jpg", g.Ref("42"))
}

func TestFit(t *testing.T) {
	w, h := fit(600, 1200, 300, 300)
	assert.Equal(t, 150, w)
	assert.Equal(t, 300, h)

	w, h = fit(3000, 1, 300, 300)
	assert.Equal(t, 300, w)
	assert.Equal(t, 1, h)
}
