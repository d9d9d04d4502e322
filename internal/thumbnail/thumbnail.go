package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultSize    = 300
	DefaultQuality = 85
	// DefaultMaxPixels : 50 мегапикселей, около 200 МБ в RGBA
	DefaultMaxPixels = 50_000_000
)

// ErrTooLarge : изображение больше допустимого числа пикселей, декодирование не выполняется
var ErrTooLarge = errors.New("изображение слишком большое для миниатюры")

var supported = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/webp": {},
}

// Generator : уменьшает изображение до maxW x maxH с сохранением пропорций и кодирует в JPEG
type Generator struct {
	maxW      int
	maxH      int
	quality   int
	maxPixels int
}

func New(maxW, maxH, quality int) *Generator {
	if maxW <= 0 {
		maxW = DefaultSize
	}
	if maxH <= 0 {
		maxH = DefaultSize
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Generator{maxW: maxW, maxH: maxH, quality: quality, maxPixels: DefaultMaxPixels}
}

// WithMaxPixels : предел ширина*высота исходника, 0 оставляет значение по умолчанию
func (g *Generator) WithMaxPixels(n int) *Generator {
	if n > 0 {
		g.maxPixels = n
	}
	return g
}

func (g *Generator) Supports(mimeType string) bool {
	_, ok := supported[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// Ref : путь миниатюры внутри локации файла
func (g *Generator) Ref(fileID string) string {
	return fmt.Sprintf("thumbnails/thumb_%s.jpg", fileID)
}

// Generate : прозрачность заливается белым, увеличение не выполняется
func (g *Generator) Generate(r io.Reader, w io.Writer) error {
	// заголовок читается дважды: сначала размеры, затем полное декодирование
	head := &bytes.Buffer{}
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, head))
	if err != nil {
		return fmt.Errorf("[Thumbnail] ошибка декодирования изображения: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(g.maxPixels) {
		return fmt.Errorf("[Thumbnail] %dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}

	src, _, err := image.Decode(io.MultiReader(head, r))
	if err != nil {
		return fmt.Errorf("[Thumbnail] ошибка декодирования изображения: %w", err)
	}

	bounds := src.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), g.maxW, g.maxH)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	if err := jpeg.Encode(w, dst, &jpeg.Options{Quality: g.quality}); err != nil {
		return fmt.Errorf("[Thumbnail] ошибка кодирования JPEG: %w", err)
	}
	return nil
}

// fit : размеры внутри рамки с сохранением пропорций, не больше исходных
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratioW := float64(maxW) / float64(w)
	ratioH := float64(maxH) / float64(h)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}
	nw := int(float64(w) * ratio)
	nh := int(float64(h) * ratio)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
