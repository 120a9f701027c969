package photo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electronjoe/exifmap/internal/photo"
	"github.com/electronjoe/exifmap/internal/phototest"
)

func TestCoordinateString(t *testing.T) {
	tests := []struct {
		in   photo.Coordinate
		want string
	}{
		{photo.Coordinate{Lat: 40.7128, Long: -74.006}, "40.7128,-74.006"},
		{photo.Coordinate{Lat: -33.8688, Long: 151.2093}, "-33.8688,151.2093"},
		{photo.Coordinate{Lat: 0, Long: 0}, "0,0"},
		{photo.Coordinate{Lat: 0.00001, Long: 10}, "0.00001,10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()

	t.Run("with gps", func(t *testing.T) {
		path := phototest.Write(t, dir, "nyc.jpg", phototest.JPEG(t, &phototest.GPS{Lat: 40.7128, Long: -74.006}))
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, 40.7128, loc.Lat)
		assert.Equal(t, -74.006, loc.Long)
		assert.Equal(t, "40.7128,-74.006", loc.String())
	})

	t.Run("degrees minutes seconds", func(t *testing.T) {
		// 33°52'7.68" S, 151°12'33.48" E
		gps := &phototest.GPS{
			LatRef:  "S",
			LatDMS:  &phototest.DMS{{33, 1}, {52, 1}, {768, 100}},
			LongRef: "E",
			LongDMS: &phototest.DMS{{151, 1}, {12, 1}, {3348, 100}},
		}
		path := phototest.Write(t, dir, "sydney.jpg", phototest.JPEG(t, gps))
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, -33.8688, loc.Lat)
		assert.Equal(t, 151.2093, loc.Long)
		assert.Equal(t, "-33.8688,151.2093", loc.String())
	})

	t.Run("missing hemisphere refs", func(t *testing.T) {
		gps := &phototest.GPS{Lat: 40.7128, Long: 74.006, NoRefs: true}
		path := phototest.Write(t, dir, "norefs.jpg", phototest.JPEG(t, gps))
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "40.7128,74.006", loc.String())
	})

	t.Run("exif after xmp segment", func(t *testing.T) {
		data := phototest.JPEG(t, &phototest.GPS{Lat: 40.7128, Long: -74.006})
		path := phototest.Write(t, dir, "xmp-first.jpg", phototest.PrependAPP1(data, phototest.XMP))
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "40.7128,-74.006", loc.String())
	})

	t.Run("xmp only", func(t *testing.T) {
		path := phototest.Write(t, dir, "xmp.jpg", phototest.PrependAPP1(phototest.JPEG(t, nil), phototest.XMP))
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("arithmetic coded", func(t *testing.T) {
		data := phototest.ArithmeticCoded(t, phototest.JPEG(t, &phototest.GPS{Lat: 40.7128, Long: -74.006}))
		path := phototest.Write(t, dir, "arith.jpg", data)
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "40.7128,-74.006", loc.String())
	})

	t.Run("jpeg without exif", func(t *testing.T) {
		path := phototest.Write(t, dir, "plain.jpg", phototest.JPEG(t, nil))
		loc, err := photo.Locate(path)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("not a jpeg", func(t *testing.T) {
		path := phototest.Write(t, dir, "notes.jpg", []byte("this is not an image"))
		loc, err := photo.Locate(path)
		assert.Nil(t, loc)
		var decodeErr *photo.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, path, decodeErr.Path)
		assert.True(t, photo.IsUnreadable(err))
	})

	t.Run("zero length", func(t *testing.T) {
		path := phototest.Write(t, dir, "empty.jpg", nil)
		_, err := photo.Locate(path)
		var decodeErr *photo.DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := photo.Locate(filepath.Join(dir, "gone.jpg"))
		var accessErr *photo.AccessError
		require.ErrorAs(t, err, &accessErr)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.True(t, photo.IsUnreadable(err))
	})
}

func TestEnumerate(t *testing.T) {
	dir := t.TempDir()
	phototest.Chdir(t, dir)

	phototest.Write(t, dir, "b.jpg", phototest.JPEG(t, nil))
	phototest.Write(t, dir, "a.jpg", phototest.JPEG(t, nil))
	phototest.Write(t, dir, "d.png", []byte("png"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "album.jpg"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	phototest.Write(t, filepath.Join(dir, "nested"), "e.jpg", phototest.JPEG(t, nil))

	files, err := photo.Enumerate(photo.DefaultPattern)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, files)

	again, err := photo.Enumerate(photo.DefaultPattern)
	require.NoError(t, err)
	assert.Equal(t, files, again)
}

func TestEnumerateEmpty(t *testing.T) {
	phototest.Chdir(t, t.TempDir())

	files, err := photo.Enumerate(photo.DefaultPattern)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEnumerateBadPattern(t *testing.T) {
	_, err := photo.Enumerate("[")
	assert.ErrorIs(t, err, filepath.ErrBadPattern)
}
