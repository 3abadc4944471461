package host

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// IconSize is the edge length, in pixels, of prepared notification icons.
const IconSize = 128

// PrepareIcon decodes a PNG, JPEG or WebP image, scales it to IconSize
// square and writes it as PNG under cacheDir/icons. The cached file is reused
// when it is newer than the source. Returns the path of the prepared icon.
func PrepareIcon(src, cacheDir string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(cacheDir, "icons", fmt.Sprintf("%s-%d.png", name, IconSize))
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.ModTime().After(srcInfo.ModTime()) {
		return dst, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("icon: decode %s: %w", src, err)
	}

	scaled := ScaleIcon(img, IconSize)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}
	if err := png.Encode(out, scaled); err != nil {
		out.Close()
		return "", fmt.Errorf("icon: encode: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("icon: %w", err)
	}
	return dst, nil
}

// ScaleIcon fits img into a size x size square, preserving aspect ratio and
// centering it on a transparent background.
func ScaleIcon(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}

	w, h := size, size
	if b.Dx() > b.Dy() {
		h = size * b.Dy() / b.Dx()
	} else if b.Dy() > b.Dx() {
		w = size * b.Dx() / b.Dy()
	}
	x0 := (size - w) / 2
	y0 := (size - h) / 2

	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, b, draw.Over, nil)
	return dst
}
