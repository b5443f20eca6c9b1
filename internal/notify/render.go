package notify

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas limits. Lines wider than MaxLineWidth are word-wrapped, at most
// MaxLines rows are drawn, and a canvas above maxPixels is refused.
const (
	MaxLineWidth = 1600
	MaxLines     = 200
	maxPixels    = 16_000_000
	truncated    = "[report truncated, see the case record for the full text]"
)

// Renderer rasterizes report text, one line per row, onto a white canvas
// sized to the longest wrapped line.
type Renderer struct {
	font    *opentype.Font
	size    float64
	padding int
}

// NewRenderer loads the TrueType or OpenType font at fontPath. When the path
// is empty or the font cannot be loaded it falls back to Go Regular.
func NewRenderer(fontPath string, size float64, padding int, logger *slog.Logger) (*Renderer, error) {
	data := goregular.TTF

	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			logger.Warn("font unavailable, using built-in face", "path", fontPath, "error", err)
		} else {
			data = b
		}
	}

	f, err := opentype.Parse(data)
	if err != nil && fontPath != "" {
		logger.Warn("font unreadable, using built-in face", "path", fontPath, "error", err)
		f, err = opentype.Parse(goregular.TTF)
	}
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return &Renderer{font: f, size: size, padding: padding}, nil
}

// PNG renders text and encodes it as a PNG image.
func (r *Renderer) PNG(text string) ([]byte, error) {
	// opentype faces cache glyphs and are not safe for concurrent use.
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    r.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	defer face.Close()

	var lines []string
	for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		lines = append(lines, wrap(face, line, fixed.I(MaxLineWidth))...)
	}
	if len(lines) > MaxLines {
		lines = append(lines[:MaxLines-1], truncated)
	}

	var widest fixed.Int26_6
	for _, line := range lines {
		widest = max(widest, font.MeasureString(face, line))
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + int(r.size)/3
	width := widest.Ceil() + 2*r.padding
	height := len(lines)*lineHeight + 2*r.padding
	if width*height > maxPixels {
		return nil, fmt.Errorf("%w: canvas %dx%d exceeds %d pixels", ErrRenderFailed, width, height, maxPixels)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	for i, line := range lines {
		d.Dot = fixed.P(r.padding, r.padding+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

// wrap splits line at word boundaries so no piece measures wider than limit.
// A single word wider than limit is broken between runes.
func wrap(face font.Face, line string, limit fixed.Int26_6) []string {
	if font.MeasureString(face, line) <= limit {
		return []string{line}
	}

	var out []string
	var cur string
	for _, word := range strings.Fields(line) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if font.MeasureString(face, next) <= limit {
			cur = next
			continue
		}
		if cur != "" {
			out = append(out, cur)
		}
		cur = ""
		for _, r := range word {
			if cur != "" && font.MeasureString(face, cur+string(r)) > limit {
				out = append(out, cur)
				cur = ""
			}
			cur += string(r)
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
