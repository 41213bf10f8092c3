package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/terraframe/internal/frames"
	"github.com/litescript/terraframe/internal/geodesy"
	"github.com/litescript/terraframe/internal/series"
	"github.com/litescript/terraframe/internal/timescale"
)

func TestParseInstant(t *testing.T) {
	now := time.Date(2021, 5, 4, 3, 2, 1, 0, time.UTC)

	i, err := parseInstant("now", "tt", now)
	require.NoError(t, err)
	assert.Equal(t, timescale.UTC, i.Scale())

	i, err = parseInstant("2000-01-01T12:00:00", "tt", now)
	require.NoError(t, err)
	assert.True(t, i.Equal(timescale.J2000(timescale.TT)))

	i, err = parseInstant("mjd:51544.5", "tai", now)
	require.NoError(t, err)
	assert.True(t, i.Equal(timescale.J2000(timescale.TAI)))

	_, err = parseInstant("2000-01-01", "ut1", now)
	assert.ErrorIs(t, err, timescale.ErrInvalidTimeScale)
	_, err = parseInstant("mjd:abc", "utc", now)
	assert.Error(t, err)
	_, err = parseInstant("2000-13-01", "utc", now)
	assert.ErrorIs(t, err, timescale.ErrInvalidCalendar)
}

func TestParseTriple(t *testing.T) {
	v, err := parseTriple("1, -2.5,3e3")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, -2.5, 3000}, v)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "1,x,3"} {
		_, err := parseTriple(bad)
		assert.Error(t, err, bad)
	}
}

func TestInputVector(t *testing.T) {
	v, ok, err := inputVector(options{vec: "1,0,0"}, geodesy.WGS84, frames.GCRSToITRS)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v.X)

	v, ok, err = inputVector(options{geodetic: "0,0,0"}, geodesy.WGS84, frames.ITRSToGCRS)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, geodesy.WGS84.SemiMajorAxis(), v.X, 1e-6)

	_, ok, err = inputVector(options{}, geodesy.WGS84, frames.GCRSToITRS)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = inputVector(options{geodetic: "0,0,0"}, geodesy.WGS84, frames.GCRSToITRS)
	assert.Error(t, err)
	_, _, err = inputVector(options{geodetic: "91,0,0"}, geodesy.WGS84, frames.ITRSToGCRS)
	assert.Error(t, err)
	_, _, err = inputVector(options{vec: "1,0,0", geodetic: "0,0,0"}, geodesy.WGS84, frames.ITRSToGCRS)
	assert.Error(t, err)
}

func TestSettingsFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terraframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("series_dir: iers\nlog_level: debug\n"), 0o644))

	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-config", path, "-log-level", "error", "-no-nutation"}, &stderr)
	require.NoError(t, err)

	cfg, err := settings(o)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "iers"), cfg.SeriesDir)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.ApplyPolarMotion)
	assert.False(t, cfg.ApplyNutationCorrections)
}

func TestParseFlagsValidation(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-count", "0"}, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"extra"}, &stderr)
	assert.Error(t, err)

	o, err := parseFlags([]string{"-watch", "10ms"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, minWatch, o.watch)
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "terraframe v"))
}

func TestRunHeadless(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-time", "2020-03-01T12:00:00",
		"-vec", "7000000,0,0",
		"-count", "2",
		"-step", "6h",
		"-stages",
		"-metrics",
		"-secular",
	}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Equal(t, 1, strings.Count(out, "2020-03-01T12:00:00.000 UTC"))
	assert.Contains(t, out, "2020-03-01T18:00:00.000 UTC")
	assert.Equal(t, 2, strings.Count(out, "GCRS → ITRS"))
	assert.Contains(t, out, "TIRS → CIRS")
	assert.Contains(t, out, "geodetic")
	assert.Contains(t, out, "cache hits")
	assert.Contains(t, stderr.String(), "secular CIP model")
}

func TestRunGeodeticSite(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-time", "mjd:58849", "-scale", "tt",
		"-direction", "itrs-to-gcrs",
		"-geodetic", "51.4778,-0.0015,46",
		"-log-level", "error",
		"-secular",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "ITRS → GCRS")
	assert.Empty(t, stderr.String())

	// The rotated site keeps its distance from the geocentre.
	var radius float64
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.HasPrefix(line, "out") {
			var x, y, z float64
			_, err := fmt.Sscan(strings.TrimPrefix(line, "out"), &x, &y, &z)
			require.NoError(t, err)
			radius = math.Sqrt(x*x + y*y + z*z)
		}
	}
	assert.InDelta(t, 6365e3, radius, 5e3)
}

func TestSkyTarget(t *testing.T) {
	tgt, err := skyTarget(options{})
	require.NoError(t, err)
	assert.Nil(t, tgt)

	tgt, err = skyTarget(options{radec: "37.95,89.26", observer: "35,-117"})
	require.NoError(t, err)
	assert.Equal(t, 89.26, tgt.coord.DecDeg)
	assert.Equal(t, -117.0, tgt.observer.LonDeg)

	for _, o := range []options{
		{radec: "10,20"},
		{radec: "10,95", observer: "0,0"},
		{radec: "10", observer: "0,0"},
	} {
		_, err := skyTarget(o)
		assert.Error(t, err)
	}
}

func TestRunObservesPolaris(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-time", "2024-06-15T00:00:00",
		"-radec", "37.95,89.26",
		"-observer", "35,-117",
		"-secular",
	}, &stdout, &stderr)
	require.NoError(t, err)

	var az, el float64
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.HasPrefix(line, "az, el") {
			fields := strings.ReplaceAll(strings.TrimPrefix(line, "az, el"), "°", "")
			_, err := fmt.Sscan(fields, &az, &el)
			require.NoError(t, err)
		}
	}
	assert.InDelta(t, 35, el, 1)
}

func TestRunRequiresFullModel(t *testing.T) {
	if _, err := series.Default(); err == nil {
		t.Skip("IERS tables embedded")
	}

	var stdout, stderr bytes.Buffer
	err := run([]string{"-time", "2020-03-01T12:00:00"}, &stdout, &stderr)
	assert.ErrorIs(t, err, series.ErrNoTables)
	assert.Empty(t, stdout.String())

	err = run([]string{"-time", "2020-03-01T12:00:00", "-series", t.TempDir()}, &stdout, &stderr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad direction", []string{"-direction", "up"}},
		{"tui without terminal", []string{"-tui"}},
		{"watch with fixed time", []string{"-watch", "1s", "-time", "2020-01-01"}},
		{"missing eop file", []string{"-eop", "/nonexistent/finals2000A.all"}},
		{"bad ellipsoid", []string{"-ellipsoid", "flat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(append(tt.args, "-secular"), &stdout, &stderr))
		})
	}
}
