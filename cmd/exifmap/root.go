package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/electronjoe/exifmap/internal/config"
	"github.com/electronjoe/exifmap/internal/logging"
	"github.com/electronjoe/exifmap/internal/photo"
	"github.com/electronjoe/exifmap/internal/report"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(version string, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.New(version),
		stdout: stdout,
		stderr: stderr,
	}
	var configFile string

	cmd := &cobra.Command{
		Use:   "exifmap",
		Short: "Map the GPS locations of the JPEG photos in the current directory",
		Long: `exifmap reads the EXIF GPS block of every photo matching the pattern
(default *.jpg) in the current directory, prints each located photo, a
summary, and a static OpenStreetMap URL with one marker per photo.

$ exifmap
=> a.jpg @ 40.7128,-74.006
=> Total 2 images | 1 with EXIF | 1 with location
=> Percentage with location = 50.00
=> Map URL: https://staticmap.openstreetmap.de/staticmap.php?&zoom=2&...`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configFile != "" {
				a.v.SetConfigFile(configFile)
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Setup(cfg.LogLevel)
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runReport()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default $HOME/.exifmap/config.{json,yaml})")
	flags.String("pattern", photo.DefaultPattern, "glob of the photos to scan in the current directory")
	flags.Bool("skip-unreadable", false, "count unreadable files and continue instead of aborting")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	cmd.Flags().Int("zoom", 2, "static map zoom level")
	cmd.Flags().String("marker-separator", "", "text placed between map markers, e.g. '|'")

	a.bind("pattern", flags.Lookup("pattern"))
	a.bind("skip_unreadable", flags.Lookup("skip-unreadable"))
	a.bind("log_level", flags.Lookup("log-level"))
	a.bind("zoom", cmd.Flags().Lookup("zoom"))
	a.bind("marker_separator", cmd.Flags().Lookup("marker-separator"))

	cmd.AddCommand(newGeocodeCmd(a))
	return cmd
}

func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

func (a *app) runReport() error {
	// 1. Enumerate
	files, err := photo.Enumerate(a.cfg.Pattern)
	if err != nil {
		return err
	}
	a.logger.Debug("enumerated photos", "pattern", a.cfg.Pattern, "count", len(files))

	opts := []report.Option{
		report.SkipUnreadable(a.cfg.SkipUnreadable),
		report.WithLogger(a.logger),
	}

	// 2. Progress goes to stderr only when it cannot interleave with the report
	if bar := a.progressBar(len(files), "Scanning"); bar != nil {
		defer bar.Finish()
		opts = append(opts, report.OnFile(func(string) {
			_ = bar.Add(1)
		}))
	}

	// 3. Extract, accumulate and print
	stats, _, err := report.New(a.stdout, a.cfg.MapOptions(), opts...).Run(files)
	if err != nil {
		return err
	}
	a.logger.Debug("scan finished",
		"total", stats.Total,
		"located", stats.WithLocation,
		"unreadable", stats.Unreadable,
	)
	return nil
}

// progressBar returns nil unless stderr is a terminal and stdout is not.
func (a *app) progressBar(n int, description string) *progressbar.ProgressBar {
	if n == 0 || !isTTY(a.stderr) || isTTY(a.stdout) {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(a.stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

var isTTY = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
