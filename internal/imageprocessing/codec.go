package imageprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/rmitchellscott/halftone/internal/pixbuf"
)

// Format is an output image encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultJPEGQuality matches the quality the halftoner has always written with.
const DefaultJPEGQuality = 75

// ParseFormat accepts a format name or common alias ("jpg", "tif").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer output format from %q", path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	}
	return "application/octet-stream"
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ErrImageTooLarge is returned when an image or resize target has more
// pixels than allowed.
var ErrImageTooLarge = errors.New("image too large")

// exceedsPixels reports whether a width x height image is over maxPixels.
// A non-positive maxPixels means no limit.
func exceedsPixels(width, height, maxPixels int) bool {
	if maxPixels <= 0 {
		return false
	}
	if width > maxPixels || height > maxPixels {
		return true
	}
	return int64(width)*int64(height) > int64(maxPixels)
}

// Decode reads a JPEG, PNG, BMP, TIFF or WebP image. The header is checked
// against maxPixels before any pixel data is allocated; zero disables the
// check.
func Decode(r io.Reader, maxPixels int) (image.Image, string, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if exceedsPixels(cfg.Width, cfg.Height, maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// LoadFile decodes the image stored at path.
func LoadFile(path string, maxPixels int) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := Decode(f, maxPixels)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// Encode writes m in format f. quality only applies to JPEG; zero selects
// DefaultJPEGQuality. Binary single-channel buffers become 1-bit PNGs and
// colour buffers whose pixels are all cube vertices become paletted PNGs.
func Encode(w io.Writer, m *pixbuf.Image, f Format, quality int) error {
	var err error
	switch f {
	case FormatJPEG:
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, m.ToImage(), &jpeg.Options{Quality: quality})
	case FormatPNG:
		err = encodePNG(w, m)
	case FormatBMP:
		err = bmp.Encode(w, m.ToImage())
	case FormatTIFF:
		err = tiff.Encode(w, m.ToImage(), &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q", f)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return nil
}

func encodePNG(w io.Writer, m *pixbuf.Image) error {
	if m.Channels() == 1 && IsBinary(m) {
		data, err := EncodeBinaryPNG(m)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	if paletted, ok := ToPaletted(m); ok {
		return png.Encode(w, paletted)
	}
	return png.Encode(w, m.ToImage())
}

// SaveFile encodes m to path, creating parent directories as needed.
func SaveFile(path string, m *pixbuf.Image, f Format, quality int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(out, m, f, quality); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
