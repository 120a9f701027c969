package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/electronjoe/exifmap/internal/geocode"
	"github.com/electronjoe/exifmap/internal/photo"
)

// reverser is the part of the geocoder the subcommand depends on.
type reverser interface {
	Reverse(ctx context.Context, c photo.Coordinate) (*geocode.Place, error)
}

func newGeocodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Print a human readable place for every located photo",
		Long: `geocode resolves the GPS location of each matching photo through a
Nominatim reverse geocoding endpoint, at most geocode.rate requests per
second (default 1, as the public Nominatim usage policy asks).

$ exifmap geocode
=> a.jpg @ 40.7128,-74.006: City Hall, Manhattan, New York, United States`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client := geocode.NewNominatim(geocode.Options{
				Endpoint:  a.cfg.Geocode.Endpoint,
				UserAgent: a.cfg.Geocode.UserAgent,
				Rate:      a.cfg.Geocode.Rate,
				Timeout:   a.cfg.Geocode.Timeout,
			})
			return a.runGeocode(ctx, client)
		},
	}

	flags := cmd.Flags()
	flags.String("endpoint", "", "reverse geocoding endpoint")
	flags.String("user-agent", "", "User-Agent sent to the geocoding service")
	a.bind("geocode.endpoint", flags.Lookup("endpoint"))
	a.bind("geocode.user_agent", flags.Lookup("user-agent"))

	return cmd
}

// runGeocode enumerates and locates photos like the report does, but
// resolves each coordinate to a place instead of building a map. Photos that
// cannot be read or geocoded are logged and skipped.
func (a *app) runGeocode(ctx context.Context, client reverser) error {
	files, err := photo.Enumerate(a.cfg.Pattern)
	if err != nil {
		return err
	}

	bar := a.progressBar(len(files), "Geocoding")
	if bar != nil {
		defer bar.Finish()
	}
	resolved, failed := 0, 0
	for _, path := range files {
		if bar != nil {
			_ = bar.Add(1)
		}

		loc, err := photo.Locate(path)
		if err != nil {
			a.logger.Warn("could not read photo", "path", path, "err", err)
			failed++
			continue
		}
		if loc == nil {
			continue
		}

		place, err := client.Reverse(ctx, *loc)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if geocode.IsKind(err, geocode.KindRateLimit) {
				return fmt.Errorf("stopping at %s: %w", path, err)
			}
			a.logger.Warn("could not geocode photo", "path", path, "location", loc.String(), "err", err)
			failed++
			continue
		}

		if _, err := fmt.Fprintf(a.stdout, "=> %s @ %s: %s\n", path, loc, place.Name()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		resolved++
	}
	a.logger.Info("geocoding finished", "photos", len(files), "resolved", resolved, "failed", failed)
	return nil
}
