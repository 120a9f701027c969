// Package phototest writes small JPEG fixtures, optionally carrying an EXIF
// GPS block, for tests of the photo pipeline.
package phototest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// GPS describes the position written into a fixture's EXIF GPS IFD.
//
// Lat and Long are each stored as a single degrees rational with zero
// minutes and seconds. LatDMS and LongDMS, when set, are written instead, as
// camera firmware does. LatRef and LongRef override the hemisphere derived
// from the signs of Lat and Long; NoRefs leaves both ref tags out.
type GPS struct {
	Lat  float64
	Long float64

	LatDMS  *DMS
	LongDMS *DMS
	LatRef  string
	LongRef string
	NoRefs  bool
}

// DMS holds degrees, minutes and seconds as {numerator, denominator} pairs.
type DMS [3][2]uint32

// ratScale is the denominator used when storing decimal degrees as a single
// rational; it keeps four-decimal fixture values exact after decoding.
const ratScale = 10000

// JPEG returns an 8x8 baseline JPEG. When gps is non-nil an APP1 EXIF
// segment holding a GPS IFD is inserted right after SOI.
func JPEG(t testing.TB, gps *GPS) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()
	if gps == nil {
		return data
	}

	return PrependAPP1(data, exifPayload(*gps))
}

// XMP is an APP1 payload holding an XMP packet rather than EXIF.
var XMP = []byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta xmlns:x=\"adobe:ns:meta/\"/>")

// PrependAPP1 returns a copy of data with an APP1 segment holding payload
// inserted right after SOI, ahead of any existing segments.
func PrependAPP1(data, payload []byte) []byte {
	segment := make([]byte, 4, 4+len(payload))
	segment[0], segment[1] = 0xFF, 0xE1
	binary.BigEndian.PutUint16(segment[2:], uint16(2+len(payload)))
	segment = append(segment, payload...)

	out := make([]byte, 0, len(data)+len(segment))
	out = append(out, data[:2]...) // SOI
	out = append(out, segment...)
	out = append(out, data[2:]...)
	return out
}

// ArithmeticCoded returns a copy of data whose baseline SOF0 marker is
// relabelled SOF9. image/jpeg rejects such files as unsupported, while their
// metadata segments stay intact.
func ArithmeticCoded(t testing.TB, data []byte) []byte {
	t.Helper()
	out := bytes.Clone(data)
	for i := 2; i+4 <= len(out) && out[i] == 0xFF; {
		if out[i+1] == 0xC0 {
			out[i+1] = 0xC9
			return out
		}
		i += 2 + int(binary.BigEndian.Uint16(out[i+2:]))
	}
	t.Fatalf("no SOF0 segment found")
	return nil
}

// Write stores content as name inside dir and returns the full path.
func Write(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// Chdir switches the working directory to dir for the rest of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

// exifPayload builds "Exif\0\0" followed by a little-endian TIFF structure:
// IFD0 with a single GPSInfo pointer, then a GPS IFD with the four
// latitude/longitude tags.
func exifPayload(gps GPS) []byte {
	const (
		ifd0Offset   = 8
		ifd0Size     = 2 + 1*12 + 4
		gpsOffset    = ifd0Offset + ifd0Size
		gpsSize      = 2 + 4*12 + 4
		latOffset    = gpsOffset + gpsSize
		longOffset   = latOffset + 24
		tiffSize     = longOffset + 24
		typeASCII    = 2
		typeLong     = 4
		typeRational = 5
	)

	le := binary.LittleEndian
	tiff := make([]byte, tiffSize)
	copy(tiff, "II")
	le.PutUint16(tiff[2:], 42)
	le.PutUint32(tiff[4:], ifd0Offset)

	entry := func(at int, tag, typ uint16, count, value uint32) {
		le.PutUint16(tiff[at:], tag)
		le.PutUint16(tiff[at+2:], typ)
		le.PutUint32(tiff[at+4:], count)
		le.PutUint32(tiff[at+8:], value)
	}
	ref := func(s string) uint32 {
		return uint32(s[0])
	}

	// IFD0
	le.PutUint16(tiff[ifd0Offset:], 1)
	entry(ifd0Offset+2, 0x8825, typeLong, 1, gpsOffset)

	// GPS IFD, entries in ascending tag order
	latRef, longRef := gps.LatRef, gps.LongRef
	if latRef == "" {
		latRef = "N"
		if gps.Lat < 0 {
			latRef = "S"
		}
	}
	if longRef == "" {
		longRef = "E"
		if gps.Long < 0 {
			longRef = "W"
		}
	}
	at := gpsOffset + 2
	add := func(tag, typ uint16, count, value uint32) {
		entry(at, tag, typ, count, value)
		at += 12
	}
	if gps.NoRefs {
		le.PutUint16(tiff[gpsOffset:], 2)
		add(0x0002, typeRational, 3, latOffset)
		add(0x0004, typeRational, 3, longOffset)
	} else {
		le.PutUint16(tiff[gpsOffset:], 4)
		add(0x0001, typeASCII, 2, ref(latRef))
		add(0x0002, typeRational, 3, latOffset)
		add(0x0003, typeASCII, 2, ref(longRef))
		add(0x0004, typeRational, 3, longOffset)
	}

	putDMS(tiff[latOffset:], gps.LatDMS, gps.Lat)
	putDMS(tiff[longOffset:], gps.LongDMS, gps.Long)

	return append([]byte("Exif\x00\x00"), tiff...)
}

// putDMS writes dms, or |v| as a single degrees rational with 0/1 minutes
// and 0/1 seconds when dms is nil.
func putDMS(b []byte, dms *DMS, v float64) {
	if dms == nil {
		dms = &DMS{{uint32(math.Round(math.Abs(v) * ratScale)), ratScale}, {0, 1}, {0, 1}}
	}
	le := binary.LittleEndian
	for i, r := range dms {
		le.PutUint32(b[i*8:], r[0])
		le.PutUint32(b[i*8+4:], r[1])
	}
}
