// Package ui provides an interactive inspector for the GCRS/ITRS
// transformation using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/terraframe/internal/astro"
	"github.com/litescript/terraframe/internal/frames"
	"github.com/litescript/terraframe/internal/timescale"
	"github.com/litescript/terraframe/internal/version"
)

// Factory builds a Transformer for a configuration. The inspector calls it
// again whenever a correction is toggled.
type Factory func(frames.Config) (*frames.Transformer, error)

// TickMsg advances the clock in live mode.
type TickMsg time.Time

type step struct {
	label   string
	seconds float64
}

var steps = []step{
	{"1s", 1},
	{"1m", 60},
	{"1h", 3600},
	{"1d", 86400},
	{"30d", 30 * 86400},
}

const defaultStep = 1

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	matrixStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)
)

// Model is the root Bubble Tea model.
type Model struct {
	factory Factory
	tr      *frames.Transformer
	cfg     frames.Config

	at      timescale.Instant
	stepIdx int
	live    bool
	now     func() time.Time

	showStages bool
	current    frames.Matrices
	err        error

	width  int
	height int
	ready  bool
}

// New creates an inspector starting at the given instant.
func New(factory Factory, cfg frames.Config, start timescale.Instant) (Model, error) {
	tr, err := factory(cfg)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		factory: factory,
		tr:      tr,
		cfg:     cfg,
		at:      start,
		stepIdx: defaultStep,
		now:     time.Now,
	}
	m.refresh()
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "right", "l":
			m.live = false
			m.at = m.at.AddSeconds(steps[m.stepIdx].seconds)
			m.refresh()
		case "left", "h":
			m.live = false
			m.at = m.at.AddSeconds(-steps[m.stepIdx].seconds)
			m.refresh()

		case "up", "+", "=":
			if m.stepIdx < len(steps)-1 {
				m.stepIdx++
			}
		case "down", "-":
			if m.stepIdx > 0 {
				m.stepIdx--
			}

		case "p":
			cfg := m.cfg
			cfg.ApplyPolarMotion = !cfg.ApplyPolarMotion
			m.reconfigure(cfg)
		case "n":
			cfg := m.cfg
			cfg.ApplyNutationCorrections = !cfg.ApplyNutationCorrections
			m.reconfigure(cfg)

		case "s":
			m.showStages = !m.showStages

		case "t":
			m.jumpToNow()

		case " ":
			m.live = !m.live
			if m.live {
				m.jumpToNow()
				return m, tickCmd()
			}
		}

	case TickMsg:
		if m.live {
			m.jumpToNow()
			return m, tickCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
	}

	return m, nil
}

func (m *Model) refresh() {
	mats, err := m.tr.Matrices(m.at)
	if err != nil {
		m.err = err
		return
	}
	m.current, m.err = mats, nil
}

func (m *Model) reconfigure(cfg frames.Config) {
	tr, err := m.factory(cfg)
	if err != nil {
		m.err = err
		return
	}
	m.tr, m.cfg = tr, cfg
	m.refresh()
}

func (m *Model) jumpToNow() {
	at, err := timescale.FromTime(m.now())
	if err != nil {
		m.err = err
		return
	}
	m.at = at
	m.refresh()
}

// Instant returns the instant being inspected.
func (m Model) Instant() timescale.Instant { return m.at }

// Config returns the active corrections.
func (m Model) Config() frames.Config { return m.cfg }

// Matrices returns the matrices for the current instant.
func (m Model) Matrices() frames.Matrices { return m.current }

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(renderTitle("TERRAFRAME"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  v%s · IAU 2006/2000A GCRS ↔ ITRS", version.Version)))
	b.WriteString("\n\n")

	b.WriteString(m.renderQuantities())
	b.WriteString("\n")
	b.WriteString(m.renderMatrices())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderQuantities() string {
	c := m.current
	rows := [][2]string{
		{"Instant", m.at.String()},
		{"TT", c.TT.String()},
		{"UT1", c.UT1.String()},
		{"ERA", fmt.Sprintf("%.9f°", c.ERA*180/math.Pi)},
		{"X, Y", fmt.Sprintf("%.6f″  %.6f″", c.CIP.X/astro.ArcsecToRad, c.CIP.Y/astro.ArcsecToRad)},
		{"s", fmt.Sprintf("%.3f µas", c.CIP.S/astro.MicroArcsecToRad)},
		{"xp, yp", fmt.Sprintf("%.4f mas  %.4f mas", c.EOP.Xp/astro.MilliArcsecToRad, c.EOP.Yp/astro.MilliArcsecToRad)},
		{"dX, dY", fmt.Sprintf("%.4f mas  %.4f mas", c.EOP.DX/astro.MilliArcsecToRad, c.EOP.DY/astro.MilliArcsecToRad)},
		{"UT1-UTC", fmt.Sprintf("%.7f s", c.EOP.UT1MinusUTC)},
		{"s'", fmt.Sprintf("%.3f µas", c.SPrime/astro.MicroArcsecToRad)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
		b.WriteString("\n")
	}

	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Corrections"))
	b.WriteString(flag("polar motion", m.cfg.ApplyPolarMotion))
	b.WriteString("  ")
	b.WriteString(flag("nutation dX/dY", m.cfg.ApplyNutationCorrections))
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Step"))
	mode := "paused"
	if m.live {
		mode = "live"
	}
	b.WriteString(valueStyle.Render(steps[m.stepIdx].label + "  " + mode))
	b.WriteString("\n")

	if c.Clamped {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("orientation data out of range: boundary values in use"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("ERROR: " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func flag(name string, on bool) string {
	if on {
		return onStyle.Render("[x] " + name)
	}
	return dimStyle.Render("[ ] " + name)
}

func (m Model) renderMatrices() string {
	c := m.current
	if !m.showStages {
		return matrixBox("GCRS → ITRS", c.GCRSToITRS())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		matrixBox("CIRS → GCRS", c.CIRSToGCRS),
		matrixBox("TIRS → CIRS", c.TIRSToCIRS),
		matrixBox("ITRS → TIRS", c.ITRSToTIRS),
	)
}

func matrixBox(title string, r astro.Matrix) string {
	return matrixStyle.Render(titleStyle.Render(title) + "\n" + r.Pretty(""))
}

func (m Model) renderFooter() string {
	return dimStyle.Render("  ←/→: step | ↑/↓: step size | p: polar motion | n: nutation | s: stages | t: now | space: live | q: quit")
}

// renderTitle draws text with a horizontal blue to magenta gradient.
func renderTitle(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.WriteString("  ")
	for i, r := range runes {
		color := gradientColor(i, len(runes))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(string(r)))
	}
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color at position col of width.
func gradientColor(col, width int) string {
	x := 0.0
	if width > 1 {
		x = float64(col) / float64(width-1)
	}

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF)
	var r, g, b float64
	if x < 0.5 {
		t := x / 0.5
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else {
		t := (x - 0.5) / 0.5
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	}
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
