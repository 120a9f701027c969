// Package staticmap builds request URLs for the OpenStreetMap static map
// service, one marker per located photo.
package staticmap

import (
	"strconv"
	"strings"

	"github.com/electronjoe/exifmap/internal/photo"
)

const (
	DefaultEndpoint    = "https://staticmap.openstreetmap.de/staticmap.php"
	DefaultZoom        = 2
	DefaultSize        = "865x512"
	DefaultMapType     = "mapnik"
	DefaultMarkerColor = "lightblue3"
)

// Options controls the fixed part of the URL and how markers are joined.
type Options struct {
	Endpoint string
	Zoom     int
	Size     string
	MapType  string
	// Color is the marker style prefix placed before each label.
	Color string
	// Separator is written between consecutive markers. By default it is
	// empty and markers run together.
	Separator string
}

// DefaultOptions returns the stock zoom, size, map type and marker colour.
func DefaultOptions() Options {
	return Options{
		Endpoint: DefaultEndpoint,
		Zoom:     DefaultZoom,
		Size:     DefaultSize,
		MapType:  DefaultMapType,
		Color:    DefaultMarkerColor,
	}
}

// Map accumulates markers onto a static map URL.
type Map struct {
	opts    Options
	b       strings.Builder
	markers int
}

// New returns a Map holding only the base URL with an empty markers list.
func New(opts Options) *Map {
	m := &Map{opts: opts}
	m.b.WriteString(opts.Endpoint)
	m.b.WriteString("?&zoom=")
	m.b.WriteString(strconv.Itoa(opts.Zoom))
	m.b.WriteString("&size=")
	m.b.WriteString(opts.Size)
	m.b.WriteString("&maptype=")
	m.b.WriteString(opts.MapType)
	m.b.WriteString("&markers=")
	return m
}

// AddMarker appends "lat,long,<color><label>". The label is written as is.
func (m *Map) AddMarker(c photo.Coordinate, label string) {
	if m.markers > 0 {
		m.b.WriteString(m.opts.Separator)
	}
	m.b.WriteString(c.String())
	m.b.WriteByte(',')
	m.b.WriteString(m.opts.Color)
	m.b.WriteString(label)
	m.markers++
}

// Markers returns how many markers were added.
func (m *Map) Markers() int {
	return m.markers
}

func (m *Map) String() string {
	return m.b.String()
}
