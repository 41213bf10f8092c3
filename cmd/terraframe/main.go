// Command terraframe computes the rotation between the celestial (GCRS) and
// terrestrial (ITRS) reference frames and rotates vectors between them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/litescript/terraframe/internal/astro"
	"github.com/litescript/terraframe/internal/config"
	"github.com/litescript/terraframe/internal/eop"
	"github.com/litescript/terraframe/internal/frames"
	"github.com/litescript/terraframe/internal/geodesy"
	"github.com/litescript/terraframe/internal/logging"
	"github.com/litescript/terraframe/internal/metrics"
	"github.com/litescript/terraframe/internal/series"
	"github.com/litescript/terraframe/internal/timescale"
	"github.com/litescript/terraframe/internal/ui"
	"github.com/litescript/terraframe/internal/version"
)

const (
	minWatch = time.Second
	maxWatch = time.Hour
)

type options struct {
	configPath  string
	eopFile     string
	seriesDir   string
	timeSpec    string
	scale       string
	direction   string
	vec         string
	geodetic    string
	radec       string
	observer    string
	ellipsoid   string
	logLevel    string
	metricsAddr string

	step  time.Duration
	count int
	watch time.Duration

	noPolarMotion bool
	noNutation    bool
	secular       bool
	stages        bool
	tui           bool
	showMetrics   bool
	showVersion   bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("terraframe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.StringVar(&o.eopFile, "eop", "", "IERS finals2000A file (overrides config)")
	fs.StringVar(&o.seriesDir, "series", "", "Directory with IERS tab5.2a/b/d tables instead of the built-in ones (overrides config)")
	fs.StringVar(&o.timeSpec, "time", "now", `Instant: "now", "YYYY-MM-DD[THH:MM[:SS.fff]]" or "mjd:<days>"`)
	fs.StringVar(&o.scale, "scale", "utc", "Time scale of -time (utc, tai, tt)")
	fs.StringVar(&o.direction, "direction", "gcrs-to-itrs", "Rotation direction (gcrs-to-itrs, itrs-to-gcrs)")
	fs.StringVar(&o.vec, "vec", "", "Vector to rotate, as x,y,z")
	fs.StringVar(&o.geodetic, "geodetic", "", "ITRS site to rotate, as lat,lon,alt in degrees and metres")
	fs.StringVar(&o.radec, "radec", "", "GCRS direction to observe, as ra,dec in degrees")
	fs.StringVar(&o.observer, "observer", "", "Observer for -radec, as lat,lon in degrees")
	fs.StringVar(&o.ellipsoid, "ellipsoid", "", "Ellipsoid for -geodetic (wgs84, spherical; overrides config)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error; overrides config)")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	fs.DurationVar(&o.step, "step", time.Hour, "Spacing between instants when -count > 1")
	fs.IntVar(&o.count, "count", 1, "Number of instants to print")
	fs.DurationVar(&o.watch, "watch", 0, "Repeat at the current time every interval (e.g. 10s)")
	fs.BoolVar(&o.noPolarMotion, "no-polar-motion", false, "Disable polar motion")
	fs.BoolVar(&o.noNutation, "no-nutation", false, "Disable dX/dY celestial pole offsets")
	fs.BoolVar(&o.secular, "secular", false, "Use the polynomial-only CIP model (errors up to ~20 arcsec)")
	fs.BoolVar(&o.stages, "stages", false, "Also print the CIRS, TIRS and polar motion stage matrices")
	fs.BoolVar(&o.tui, "tui", false, "Start the interactive inspector")
	fs.BoolVar(&o.showMetrics, "metrics", false, "Print pipeline metrics on exit")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if o.count < 1 {
		return options{}, fmt.Errorf("-count must be at least 1")
	}
	if o.watch != 0 {
		if o.watch < minWatch {
			o.watch = minWatch
		} else if o.watch > maxWatch {
			o.watch = maxWatch
		}
	}
	return o, nil
}

// settings merges the config file with explicit flags.
func settings(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}

	if o.set["eop"] {
		cfg.EOPFile = o.eopFile
	}
	if o.set["series"] {
		cfg.SeriesDir = o.seriesDir
	}
	if o.set["log-level"] {
		cfg.LogLevel = o.logLevel
	}
	if o.set["ellipsoid"] {
		cfg.Ellipsoid = o.ellipsoid
	}
	if o.noPolarMotion {
		cfg.ApplyPolarMotion = false
	}
	if o.noNutation {
		cfg.ApplyNutationCorrections = false
	}
	return cfg, cfg.Validate()
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	cfg, err := settings(o)
	if err != nil {
		return err
	}
	logger := logging.NewWithOutput(cfg.Level(), stderr)

	dir, err := frames.ParseDirection(o.direction)
	if err != nil {
		return err
	}
	vec, hasVec, err := inputVector(o, cfg.Figure(), dir)
	if err != nil {
		return err
	}

	target, err := skyTarget(o)
	if err != nil {
		return err
	}

	cip, table, err := loadData(cfg, o.secular, logger)
	if err != nil {
		return err
	}

	factory := func(fc frames.Config) (*frames.Transformer, error) {
		return frames.New(cip, table,
			frames.WithConfig(fc),
			frames.WithLogger(logger.Named("frames")),
			frames.WithMetrics(true),
		)
	}
	fcfg := frames.Config{
		ApplyPolarMotion:         cfg.ApplyPolarMotion,
		ApplyNutationCorrections: cfg.ApplyNutationCorrections,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if o.metricsAddr != "" {
		go serveMetrics(ctx, o.metricsAddr, logger)
	}

	start, err := parseInstant(o.timeSpec, o.scale, time.Now())
	if err != nil {
		return err
	}

	if o.tui {
		if !isTerminal(stdout) {
			return errors.New("-tui needs an interactive terminal")
		}
		model, err := ui.New(factory, fcfg, start)
		if err != nil {
			return err
		}
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("run inspector: %w", err)
		}
		return printMetrics(o, stdout)
	}

	tr, err := factory(fcfg)
	if err != nil {
		return err
	}
	r := newReport(stdout, cfg.Figure(), dir, o.stages)
	r.target = target

	if o.watch == 0 {
		for k := 0; k < o.count; k++ {
			at := start.AddSeconds(float64(k) * o.step.Seconds())
			if err := r.write(tr, at, vec, hasVec); err != nil {
				return err
			}
		}
		return printMetrics(o, stdout)
	}

	if o.set["time"] && o.timeSpec != "now" {
		return errors.New("-watch always uses the current time; drop -time")
	}
	ticker := time.NewTicker(o.watch)
	defer ticker.Stop()
	at := start
	for {
		if err := r.write(tr, at, vec, hasVec); err != nil {
			logger.Error("%v", err)
		}
		select {
		case <-ctx.Done():
			logger.Debug("watch loop shutting down")
			return printMetrics(o, stdout)
		case now := <-ticker.C:
			if at, err = timescale.FromTime(now); err != nil {
				return err
			}
		}
	}
}

// loadData selects the CIP model and reads the orientation data named by
// cfg. The secular model is only used when asked for.
func loadData(cfg config.Config, secular bool, logger *logging.Logger) (*series.CIP, *eop.Table, error) {
	var (
		cip *series.CIP
		err error
	)
	switch {
	case secular:
		cip = series.Secular()
		logger.Warn("secular CIP model selected: errors up to ~20 arcsec")
	case cfg.SeriesDir != "":
		cip, err = series.LoadCIP(cfg.SeriesDir)
	default:
		cip, err = series.Default()
		if errors.Is(err, series.ErrNoTables) {
			err = fmt.Errorf("%w: pass -series <dir> with tab5.2a.txt and tab5.2b.txt, or -secular", err)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("series: X %d, Y %d, s+XY/2 %d terms",
		cip.X.NumTerms(), cip.Y.NumTerms(), cip.SXY2.NumTerms())

	var table *eop.Table
	if cfg.EOPFile != "" {
		if table, err = eop.Load(cfg.EOPFile); err != nil {
			return nil, nil, err
		}
	}
	return cip, table, nil
}

func serveMetrics(ctx context.Context, addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server: %v", err)
	}
}

// parseInstant accepts "now", "mjd:<days>" or a calendar timestamp in the
// named scale.
func parseInstant(value, scaleName string, now time.Time) (timescale.Instant, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "now") {
		return timescale.FromTime(now)
	}

	scale, err := timescale.ParseScale(scaleName)
	if err != nil {
		return timescale.Instant{}, err
	}
	if scale == timescale.UT1 {
		return timescale.Instant{}, fmt.Errorf("-scale ut1: %w", timescale.ErrInvalidTimeScale)
	}

	if rest, ok := strings.CutPrefix(strings.ToLower(value), "mjd:"); ok {
		mjd, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return timescale.Instant{}, fmt.Errorf("parse %q: %w", value, err)
		}
		return timescale.FromMJD(mjd, scale)
	}
	return timescale.ParseCalendar(value, scale)
}

// inputVector returns the vector to rotate, if any. A geodetic site is an
// ITRS position, so it only makes sense rotating towards GCRS.
func inputVector(o options, figure geodesy.Ellipsoid, dir frames.Direction) (astro.Vec3, bool, error) {
	if o.vec != "" && o.geodetic != "" {
		return astro.Vec3{}, false, errors.New("-vec and -geodetic are mutually exclusive")
	}
	switch {
	case o.vec != "":
		v, err := parseTriple(o.vec)
		if err != nil {
			return astro.Vec3{}, false, fmt.Errorf("-vec: %w", err)
		}
		return astro.Vec3{X: v[0], Y: v[1], Z: v[2]}, true, nil
	case o.geodetic != "":
		if dir != frames.ITRSToGCRS {
			return astro.Vec3{}, false, errors.New("-geodetic needs -direction itrs-to-gcrs")
		}
		v, err := parseTriple(o.geodetic)
		if err != nil {
			return astro.Vec3{}, false, fmt.Errorf("-geodetic: %w", err)
		}
		if math.Abs(v[0]) > 90 {
			return astro.Vec3{}, false, fmt.Errorf("-geodetic: latitude %g out of range", v[0])
		}
		return figure.ToCartesian(v[0]*math.Pi/180, v[1]*math.Pi/180, v[2]), true, nil
	}
	return astro.Vec3{}, false, nil
}

// target is a direction observed from a site.
type target struct {
	coord    astro.SkyCoord
	observer astro.Observer
}

func skyTarget(o options) (*target, error) {
	if o.radec == "" && o.observer == "" {
		return nil, nil
	}
	if o.radec == "" || o.observer == "" {
		return nil, errors.New("-radec and -observer must be given together")
	}
	rd, err := parseNumbers(o.radec, 2)
	if err != nil {
		return nil, fmt.Errorf("-radec: %w", err)
	}
	ll, err := parseNumbers(o.observer, 2)
	if err != nil {
		return nil, fmt.Errorf("-observer: %w", err)
	}
	if math.Abs(rd[1]) > 90 || math.Abs(ll[0]) > 90 {
		return nil, errors.New("declination and latitude must lie within ±90°")
	}
	return &target{
		coord:    astro.SkyCoord{RAdeg: rd[0], DecDeg: rd[1]},
		observer: astro.Observer{LatDeg: ll[0], LonDeg: ll[1]},
	}, nil
}

func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	v, err := parseNumbers(s, 3)
	if err != nil {
		return out, err
	}
	copy(out[:], v)
	return out, nil
}

func parseNumbers(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// report prints the transformation at successive instants.
type report struct {
	w      io.Writer
	figure geodesy.Ellipsoid
	dir    frames.Direction
	stages bool
	target *target

	heading lipgloss.Style
	label   lipgloss.Style
	warn    lipgloss.Style
	blank   bool
}

func newReport(w io.Writer, figure geodesy.Ellipsoid, dir frames.Direction, stages bool) *report {
	r := &report{
		w:       w,
		figure:  figure,
		dir:     dir,
		stages:  stages,
		heading: lipgloss.NewStyle(),
		label:   lipgloss.NewStyle().Width(10),
		warn:    lipgloss.NewStyle(),
	}
	if isTerminal(w) {
		r.heading = r.heading.Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
		r.label = r.label.Foreground(lipgloss.Color("60"))
		r.warn = r.warn.Foreground(lipgloss.Color("#E84A27"))
	}
	return r
}

func (r *report) write(tr *frames.Transformer, at timescale.Instant, vec astro.Vec3, hasVec bool) error {
	m, err := tr.Matrices(at)
	if err != nil {
		return err
	}

	if r.blank {
		fmt.Fprintln(r.w)
	}
	r.blank = true

	r.line("instant", at.String())
	r.line("TT", m.TT.String())
	r.line("UT1", m.UT1.String())
	r.line("ERA", fmt.Sprintf("%.15f rad", m.ERA))
	r.line("X", fmt.Sprintf("%.15e rad", m.CIP.X))
	r.line("Y", fmt.Sprintf("%.15e rad", m.CIP.Y))
	r.line("s", fmt.Sprintf("%.15e rad", m.CIP.S))
	r.line("xp, yp", fmt.Sprintf("%.9e %.9e rad", m.EOP.Xp, m.EOP.Yp))
	r.line("UT1-UTC", fmt.Sprintf("%.7f s", m.EOP.UT1MinusUTC))
	if m.Clamped {
		fmt.Fprintln(r.w, r.warn.Render("orientation data out of range: boundary values in use"))
	}

	rot := m.GCRSToITRS()
	title := "GCRS → ITRS"
	if r.dir == frames.ITRSToGCRS {
		rot, title = m.ITRSToGCRS, "ITRS → GCRS"
	}
	r.matrix(title, rot)

	if r.stages {
		r.matrix("CIRS → GCRS", m.CIRSToGCRS)
		r.matrix("TIRS → CIRS", m.TIRSToCIRS)
		r.matrix("ITRS → TIRS", m.ITRSToTIRS)
	}

	if hasVec {
		out := rot.MulVec(vec)
		r.line("in", formatVec(vec))
		r.line("out", formatVec(out))
		if r.dir == frames.GCRSToITRS {
			lat, lon, alt := r.figure.FromCartesian(out)
			r.line("geodetic", fmt.Sprintf("%.9f° %.9f° %.3f m (%s)",
				lat*180/math.Pi, lon*180/math.Pi, alt, r.figure))
		}
	}

	if r.target != nil {
		sky := astro.EquatorialToHorizontal(r.target.coord, r.target.observer, m.GCRSToITRS())
		r.line("az, el", fmt.Sprintf("%.6f° %.6f°", sky.AzDeg, sky.ElDeg))
	}
	return nil
}

func (r *report) line(label, value string) {
	fmt.Fprintln(r.w, r.label.Render(label)+value)
}

func (r *report) matrix(title string, m astro.Matrix) {
	fmt.Fprintln(r.w, r.heading.Render(title))
	fmt.Fprintln(r.w, "  "+m.Pretty("  "))
}

func formatVec(v astro.Vec3) string {
	return fmt.Sprintf("%.6f %.6f %.6f", v.X, v.Y, v.Z)
}

func printMetrics(o options, w io.Writer) error {
	if !o.showMetrics {
		return nil
	}
	snap, err := metrics.Collect()
	if err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}
	fmt.Fprintf(w, "\ncache hits %.0f, misses %.0f, clamped lookups %.0f, computations %d\n",
		snap.CacheHits, snap.CacheMisses, snap.Clamps, snap.Computations)
	names := make([]string, 0, len(snap.Datasets))
	for name := range snap.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "dataset %-5s %.0f\n", name, snap.Datasets[name])
	}
	return nil
}
