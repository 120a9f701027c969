// Package report runs the scan over enumerated photos, printing a line per
// located photo, then the run summary and the static map URL.
package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/electronjoe/exifmap/internal/photo"
	"github.com/electronjoe/exifmap/internal/staticmap"
)

// Stats are the counters accumulated over one run.
type Stats struct {
	Total int
	// WithEXIF counts photos with GPS data; the summary labels it "with EXIF".
	WithEXIF     int
	WithLocation int
	// Unreadable counts files skipped under SkipUnreadable.
	Unreadable int
}

// Percentage is the share of photos with a location. ok is false when no
// photos were scanned.
func (s Stats) Percentage() (pct float64, ok bool) {
	if s.Total == 0 {
		return 0, false
	}
	return float64(s.WithLocation) * 100.0 / float64(s.Total), true
}

// LocateFunc returns a photo's coordinate, or nil when it has none.
type LocateFunc func(path string) (*photo.Coordinate, error)

// Option configures a Reporter.
type Option func(*Reporter)

// WithLocator replaces photo.Locate.
func WithLocator(fn LocateFunc) Option {
	return func(r *Reporter) { r.locate = fn }
}

// SkipUnreadable makes unreadable files count as skipped instead of
// aborting the run.
func SkipUnreadable(skip bool) Option {
	return func(r *Reporter) { r.skipUnreadable = skip }
}

// OnFile registers a callback invoked after each file is processed.
func OnFile(fn func(path string)) Option {
	return func(r *Reporter) { r.onFile = fn }
}

// WithLogger sets the logger used for skipped files.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) { r.logger = logger }
}

// Reporter writes the scan report to out and collects markers on a map.
type Reporter struct {
	out            io.Writer
	mapOpts        staticmap.Options
	locate         LocateFunc
	skipUnreadable bool
	onFile         func(path string)
	logger         *slog.Logger
}

// New creates a Reporter writing to out.
func New(out io.Writer, mapOpts staticmap.Options, opts ...Option) *Reporter {
	r := &Reporter{
		out:     out,
		mapOpts: mapOpts,
		locate:  photo.Locate,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes files in order. On an unreadable file it returns the error
// straight away, without a summary, unless SkipUnreadable is set.
func (r *Reporter) Run(files []string) (Stats, *staticmap.Map, error) {
	stats := Stats{Total: len(files)}
	m := staticmap.New(r.mapOpts)

	for _, path := range files {
		loc, err := r.locate(path)
		if err != nil {
			if !r.skipUnreadable || !photo.IsUnreadable(err) {
				return stats, m, err
			}
			r.logger.Warn("skipping unreadable photo", "path", path, "err", err)
			stats.Unreadable++
		} else if loc != nil {
			if _, err := fmt.Fprintf(r.out, "=> %s @ %s\n", path, loc); err != nil {
				return stats, m, fmt.Errorf("write report: %w", err)
			}
			m.AddMarker(*loc, path)
			stats.WithEXIF++
			stats.WithLocation++
		}
		if r.onFile != nil {
			r.onFile(path)
		}
	}

	if err := r.summarize(stats, m); err != nil {
		return stats, m, fmt.Errorf("write report: %w", err)
	}
	return stats, m, nil
}

func (r *Reporter) summarize(stats Stats, m *staticmap.Map) error {
	if _, err := fmt.Fprintf(r.out, "=> Total %d images | %d with EXIF | %d with location\n",
		stats.Total, stats.WithEXIF, stats.WithLocation); err != nil {
		return err
	}
	if r.skipUnreadable && stats.Unreadable > 0 {
		if _, err := fmt.Fprintf(r.out, "=> Skipped %d unreadable images\n", stats.Unreadable); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(r.out, "=> Percentage with location = %s\n", formatPercentage(stats)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.out, "=> Map URL: %s\n", m)
	return err
}

// formatPercentage renders the located share with two decimals, or N/A for
// an empty run.
func formatPercentage(stats Stats) string {
	pct, ok := stats.Percentage()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%3.2f", pct)
}
