package image

import (
	"encoding/binary"
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is a decoded input image together with the metadata the pipeline
// cares about.
type Source struct {
	Path   string  // Original file path
	Buffer *Buffer // Decoded pixels
	DPI    float64 // Resolution from file metadata, 0 if unknown
}

// Load decodes an image file into a buffer. EXIF orientation is applied so
// that phone photos come out upright.
func Load(path string) (*Source, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src := &Source{
		Path:   path,
		Buffer: FromImage(img),
	}

	// Try to extract DPI from TIFF metadata
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := extractTIFFDPI(path); err == nil {
			src.DPI = dpi
		}
	}

	return src, nil
}

// Decode reads an image from r into a buffer.
func Decode(r io.Reader) (*Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// Save encodes the buffer to path. The format follows the file extension.
func Save(b *Buffer, path string) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := imaging.Save(b.ToNRGBA(), path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Fit downsamples the buffer so that neither side exceeds maxSize. Buffers
// that already fit, and maxSize <= 0, return an unchanged copy.
func Fit(b *Buffer, maxSize int) *Buffer {
	b.MustValidate()
	if maxSize <= 0 || (b.Width <= maxSize && b.Height <= maxSize) {
		return b.Clone()
	}
	return FromImage(imaging.Fit(b.ToNRGBA(), maxSize, maxSize, imaging.Lanczos))
}

// WidthInches returns the image width in inches for the given DPI.
func (s *Source) WidthInches() float64 {
	if s.DPI == 0 {
		return 0
	}
	return float64(s.Buffer.Width) / s.DPI
}

// HeightInches returns the image height in inches for the given DPI.
func (s *Source) HeightInches() float64 {
	if s.DPI == 0 {
		return 0
	}
	return float64(s.Buffer.Height) / s.DPI
}

// extractTIFFDPI attempts to extract DPI from TIFF metadata.
func extractTIFFDPI(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	// Read TIFF header to determine byte order
	header := make([]byte, 8)
	if _, err := io.ReadFull(file, header); err != nil {
		return 0, err
	}

	var byteOrder binary.ByteOrder
	if header[0] == 'I' && header[1] == 'I' {
		byteOrder = binary.LittleEndian
	} else if header[0] == 'M' && header[1] == 'M' {
		byteOrder = binary.BigEndian
	} else {
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	ifdOffset := byteOrder.Uint32(header[4:8])
	if _, err := file.Seek(int64(ifdOffset), io.SeekStart); err != nil {
		return 0, err
	}

	var numEntries uint16
	if err := binary.Read(file, byteOrder, &numEntries); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	var resUnit uint16 = 2 // Default to inches

	for i := uint16(0); i < numEntries; i++ {
		entry := make([]byte, 12)
		if _, err := io.ReadFull(file, entry); err != nil {
			return 0, err
		}

		tag := byteOrder.Uint16(entry[0:2])
		fieldType := byteOrder.Uint16(entry[2:4])
		valueOffset := byteOrder.Uint32(entry[8:12])

		switch tag {
		case 282: // XResolution
			if fieldType == 5 {
				xRes = readTIFFRational(file, int64(valueOffset), byteOrder)
			}
		case 283: // YResolution
			if fieldType == 5 {
				yRes = readTIFFRational(file, int64(valueOffset), byteOrder)
			}
		case 296: // ResolutionUnit
			if fieldType == 3 {
				resUnit = byteOrder.Uint16(entry[8:10])
			}
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}

	// Centimeters to inches
	if resUnit == 3 {
		dpi *= 2.54
	}
	return dpi, nil
}

// readTIFFRational reads a RATIONAL value (two uint32s) without disturbing the
// current read position.
func readTIFFRational(file *os.File, offset int64, byteOrder binary.ByteOrder) float64 {
	currentPos, _ := file.Seek(0, io.SeekCurrent)
	defer file.Seek(currentPos, io.SeekStart)

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return 0
	}
	var num, denom uint32
	if err := binary.Read(file, byteOrder, &num); err != nil {
		return 0
	}
	if err := binary.Read(file, byteOrder, &denom); err != nil {
		return 0
	}
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

// SupportedFormats returns the list of supported image file extensions.
// HEIC/HEIF must be converted before it reaches the pipeline.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp", ".tiff", ".tif", ".bmp", ".gif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
