package photo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// gpsPosition reads the GPS latitude and longitude of x. The bool is false
// when either value is absent. A missing hemisphere ref counts as N or E.
func gpsPosition(x *exif.Exif) (Coordinate, bool, error) {
	lat, ok, err := gpsAxis(x, exif.GPSLatitude, exif.GPSLatitudeRef, "S")
	if err != nil || !ok {
		return Coordinate{}, false, err
	}
	long, ok, err := gpsAxis(x, exif.GPSLongitude, exif.GPSLongitudeRef, "W")
	if err != nil || !ok {
		return Coordinate{}, false, err
	}
	return Coordinate{Lat: lat, Long: long}, true, nil
}

func gpsAxis(x *exif.Exif, field, refField exif.FieldName, negative string) (float64, bool, error) {
	tag, err := x.Get(field)
	if err != nil {
		if notPresent(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	deg, err := degrees(tag)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", field, err)
	}

	refTag, err := x.Get(refField)
	switch {
	case notPresent(err):
	case err != nil:
		return 0, false, err
	default:
		ref, err := refTag.StringVal()
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", refField, err)
		}
		if strings.EqualFold(strings.Trim(ref, "\x00 "), negative) {
			deg = -deg
		}
	}
	return deg, true, nil
}

func notPresent(err error) bool {
	var missing exif.TagNotPresentError
	return errors.As(err, &missing)
}

// degrees sums a degrees, minutes, seconds triple exactly and rounds once.
func degrees(tag *tiff.Tag) (float64, error) {
	if tag.Count < 3 {
		return 0, fmt.Errorf("want 3 rationals, got %d", tag.Count)
	}
	sum := new(big.Rat)
	for i, unit := range []int64{1, 60, 3600} {
		r, err := tag.Rat(i)
		if err != nil {
			return 0, err
		}
		sum.Add(sum, r.Quo(r, big.NewRat(unit, 1)))
	}
	f, _ := sum.Float64()
	return f, nil
}

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
)

var exifHeader = []byte("Exif\x00\x00")

// findExif walks the JPEG segments before the scan data and returns the TIFF
// block of the first APP1 segment carrying EXIF, or nil if there is none.
// goexif only inspects the first APP1, which is often XMP.
func findExif(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	var head [2]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, err
	}
	if head[0] != 0xFF || head[1] != markerSOI {
		return nil, errors.New("missing SOI marker")
	}

	for {
		marker, err := nextMarker(br)
		if err != nil {
			return nil, err
		}
		switch {
		case marker == markerEOI || marker == markerSOS:
			return nil, nil
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			continue
		}

		var size [2]byte
		if _, err := io.ReadFull(br, size[:]); err != nil {
			return nil, err
		}
		n := int(binary.BigEndian.Uint16(size[:])) - 2
		if n < 0 {
			return nil, fmt.Errorf("segment %#x: bad length", marker)
		}
		if marker != markerAPP1 {
			if _, err := br.Discard(n); err != nil {
				return nil, err
			}
			continue
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, err
		}
		if tiffData, ok := bytes.CutPrefix(payload, exifHeader); ok {
			return tiffData, nil
		}
	}
}

// nextMarker reads a 0xFF and returns the marker byte after any fill bytes.
func nextMarker(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, fmt.Errorf("expected marker, found %#x", b)
	}
	for {
		b, err = br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			return b, nil
		}
	}
}
