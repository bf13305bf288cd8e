// Command render builds a pharmacy map from local files and writes it as a
// standalone HTML page. It runs the same pipeline as the HTTP service without
// sessions.
//
// Usage:
//
//	go run ./cmd/render \
//	  -pharmacies data/pharmacies.csv \
//	  -boundary data/boundary.geojson \
//	  -out map.html
//
// Add -isochrone with -day, -mode and -minutes to draw travel-time contours.
// Isochrones need MAPBOX_TOKEN in the environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/pna-map-generator/internal/adapter/mapbox"
	"github.com/couchcryptid/pna-map-generator/internal/config"
	"github.com/couchcryptid/pna-map-generator/internal/dataset"
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/mapview"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/couchcryptid/pna-map-generator/internal/pipeline"
)

type options struct {
	pharmacies string
	boundary   string
	postcodes  string
	palette    string
	out        string
	isochrone  bool
	day        string
	mode       string
	minutes    int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVar(&o.pharmacies, "pharmacies", "", "pharmacy list CSV")
	fs.StringVar(&o.boundary, "boundary", "", "boundary GeoJSON file")
	fs.StringVar(&o.postcodes, "postcodes", "", "gzipped postcode table (default $POSTCODE_FILE)")
	fs.StringVar(&o.palette, "palette", "", "marker palette YAML (default $PALETTE_FILE)")
	fs.StringVar(&o.out, "out", "map.html", "output HTML path")
	fs.BoolVar(&o.isochrone, "isochrone", false, "draw isochrone contours")
	fs.StringVar(&o.day, "day", string(domain.Weekday), "day type: Weekday, Weekend_Saturday or Weekend_Sunday")
	fs.StringVar(&o.mode, "mode", string(domain.DefaultTravelMode), "travel mode")
	fs.IntVar(&o.minutes, "minutes", domain.DefaultTravelMinutes, "travel time in minutes")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.pharmacies == "" || o.boundary == "" {
		fs.Usage()
		return o, errors.New("missing required flags: -pharmacies, -boundary")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, observability.NewMetrics(), logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) error {
	if opts.postcodes == "" {
		opts.postcodes = cfg.PostcodeFile
	}
	if opts.palette == "" {
		opts.palette = cfg.PaletteFile
	}

	var sc domain.Scenario
	if opts.isochrone {
		var err error
		if sc, err = scenario(opts); err != nil {
			return err
		}
	}

	palette, err := config.LoadPalette(opts.palette)
	if err != nil {
		return err
	}
	postcodes, _, err := dataset.LoadPostcodes(opts.postcodes)
	if err != nil {
		return err
	}
	in, err := loadInput(opts, postcodes, logger)
	if err != nil {
		return err
	}

	var provider domain.IsochroneProvider
	if opts.isochrone && cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxMaxRetries, metrics, logger)
		provider = mapbox.NewCachedProvider(client, cfg.MapboxCacheSize, metrics)
	}
	gen := pipeline.NewGenerator(provider, palette, nil, logger, metrics)

	var (
		m      *mapview.Map
		report domain.CoverageReport
		title  = "Pharmacy map"
	)
	if opts.isochrone {
		title = "Pharmacy isochrone map"
		m, report, err = gen.IsochroneMap(ctx, in, sc)
	} else {
		m, report, err = gen.CoverageMap(ctx, in)
	}
	if err != nil {
		return err
	}

	if err := writeMap(opts.out, title, m); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d pharmacies, %d regions, %d polygons, %d failed requests\n",
		opts.out, report.Pharmacies, report.Regions, report.Polygons, report.FailedRequests)
	return nil
}

func scenario(opts options) (domain.Scenario, error) {
	day, err := domain.ParseDayType(opts.day)
	if err != nil {
		return domain.Scenario{}, err
	}
	mode, err := domain.ParseTravelMode(opts.mode)
	if err != nil {
		return domain.Scenario{}, err
	}
	sc := domain.Scenario{Day: day, Mode: mode, Minutes: opts.minutes}
	return sc, sc.Validate()
}

func loadInput(opts options, postcodes *domain.PostcodeIndex, logger *slog.Logger) (pipeline.Input, error) {
	pf, err := os.Open(opts.pharmacies)
	if err != nil {
		return pipeline.Input{}, err
	}
	defer pf.Close()
	records, err := dataset.ReadPharmacyCSV(pf)
	if err != nil {
		return pipeline.Input{}, err
	}
	res := domain.Normalize(records, postcodes)
	for _, u := range res.Unmatched {
		logger.Warn("postcode not found", "code", u.Code, "postcode", u.Postcode)
	}

	bf, err := os.Open(opts.boundary)
	if err != nil {
		return pipeline.Input{}, err
	}
	defer bf.Close()
	boundary, err := dataset.ReadBoundary(bf)
	if err != nil {
		return pipeline.Input{}, err
	}

	return pipeline.Input{SessionID: "cli", Pharmacies: res.Pharmacies, Boundary: boundary}, nil
}

func writeMap(path, title string, m *mapview.Map) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return mapview.Render(f, title, m)
}
