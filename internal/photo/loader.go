package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// DefaultPattern is the glob used to find photos in the working directory.
const DefaultPattern = "*.jpg"

// Coordinate is a signed decimal-degree position decoded from EXIF GPS tags.
type Coordinate struct {
	Lat  float64
	Long float64
}

// String renders the coordinate as "lat,long" using the shortest decimal
// form of each value, e.g. "40.7128,-74.006".
func (c Coordinate) String() string {
	return formatDegrees(c.Lat) + "," + formatDegrees(c.Long)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Enumerate lists the files in the working directory matching pattern.
// The order is lexical and stable for the lifetime of the returned slice.
func Enumerate(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			// Keep it; Locate reports the access failure under the run's error policy.
			files = append(files, path)
			continue
		}
		if info.IsDir() {
			slog.Debug("skipping directory matching pattern", "path", path)
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// Locate opens path as a JPEG and returns its GPS position. It returns
// (nil, nil) when the image carries no EXIF data or no GPS block.
func Locate(path string) (*Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	defer f.Close()

	// 1) The container must be a JPEG, whatever the extension says. Valid
	// files the decoder does not support (arithmetic coding, 12-bit) still
	// carry readable EXIF.
	if _, err := jpeg.DecodeConfig(f); err != nil {
		var unsupported jpeg.UnsupportedError
		if !errors.As(err, &unsupported) {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("decode jpeg: %w", err)}
		}
		slog.Debug("unsupported jpeg variant", "path", path, "err", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}

	// 2) Decode EXIF
	x, err := exif.Decode(f)
	if err != nil && isIntroMismatch(err) {
		x, err = decodeLaterExif(f)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if x == nil || exif.IsCriticalError(err) {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("decode exif: %w", err)}
		}
		slog.Debug("partial exif data", "path", path, "err", err)
	}
	if x == nil {
		return nil, nil
	}

	// 3) GPS block
	c, ok, err := gpsPosition(x)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("read gps: %w", err)}
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// isIntroMismatch reports whether goexif found an APP1 segment that is not
// EXIF (XMP, for instance).
func isIntroMismatch(err error) bool {
	return strings.Contains(err.Error(), "failed to find exif intro marker")
}

// decodeLaterExif looks past the first APP1 segment for an EXIF block. It
// returns a nil Exif and no error when the file has none.
func decodeLaterExif(f io.ReadSeeker) (*exif.Exif, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	block, err := findExif(f)
	if err != nil || block == nil {
		return nil, err
	}
	return exif.Decode(bytes.NewReader(block))
}
