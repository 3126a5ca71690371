// Package tui is the terminal knowledge-graph explorer: a bubbletea program
// that loads the artifact, animates a force layout and supports search,
// hover and navigation.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/graph"
	"github.com/rmax-ai/docgraph/pkg/layout"
)

const (
	frameRate = 16 * time.Millisecond

	headerRows = 1
	footerRows = 2

	// Below this many nodes every focused node is labelled.
	labelAllThreshold = 40
)

// Loader fetches and transforms the artifact.
type Loader func(ctx context.Context) (*explore.Graph, error)

// Navigator performs an activation. It may return a command that reports a
// NavigatedMsg, or nil.
type Navigator func(route string) tea.Cmd

// NavigatedMsg reports the outcome of a navigation.
type NavigatedMsg struct {
	Route string
	Err   error
}

// Options configures a Model.
type Options struct {
	Load       Loader
	Navigate   Navigator
	Palette    explore.Palette
	DocsPrefix string
	Dark       bool
	Layout     layout.Config
	Logger     *slog.Logger
}

type artifactMsg struct {
	graph *explore.Graph
	err   error
}

type layoutMsg struct {
	sim *layout.Simulation
	gen int
}

type frameMsg time.Time

// Model is the bubbletea model of the explorer.
type Model struct {
	opts   Options
	theme  theme
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	spinner spinner.Model
	input   textinput.Model

	graph *explore.Graph
	view  *explore.View
	sim   *layout.Simulation
	gen   int

	width  int
	height int

	status  string
	loadErr error
}

// New builds a model. Zero-valued options fall back to the default palette,
// the default layout and the "docs" prefix.
func New(opts Options) Model {
	if opts.Palette.Clusters == nil {
		opts.Palette = explore.DefaultPalette
	}
	if opts.Layout.WarmupTicks == 0 && opts.Layout.CooldownTicks == 0 {
		opts.Layout = layout.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Search nodes…"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.Width = 30

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		opts:    opts,
		theme:   themeFor(opts.Dark),
		logger:  opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
		input:   ti,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchArtifact(),
	)
}

// Ready reports whether both the graph and its layout are available.
func (m Model) Ready() bool {
	return m.graph != nil && m.sim != nil
}

// View model accessors for hosts and tests.

func (m Model) Search() string { return m.input.Value() }

func (m Model) Hovered() string {
	if m.view == nil {
		return ""
	}
	return m.view.Hovered()
}

func (m Model) Status() string { return m.status }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if !m.Ready() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case artifactMsg:
		if msg.err != nil {
			// No retry: the view stays in its loading state.
			m.loadErr = msg.err
			m.logger.Error("artifact_load_failed", "error", msg.err)
			return m, nil
		}
		m.loadErr = nil
		m.graph = msg.graph
		m.view = explore.NewView(msg.graph, m.opts.Palette)
		m.view.SetSearch(m.input.Value())
		m.sim = nil
		m.gen++
		m.logger.Info("artifact_loaded", "nodes", len(msg.graph.Nodes), "links", len(msg.graph.Links))
		cmds = append(cmds, prepareLayout(msg.graph, m.opts.Layout, m.gen))

	case layoutMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.sim = msg.sim
		if m.sim.Active() {
			cmds = append(cmds, frame())
		}

	case frameMsg:
		if m.sim != nil && m.sim.Step() {
			cmds = append(cmds, frame())
		}

	case NavigatedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("could not open %s: %v", msg.Route, msg.Err)
			m.logger.Warn("navigation_failed", "route", msg.Route, "error", msg.Err)
		} else {
			m.status = "opened " + msg.Route
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	if m.input.Focused() {
		switch msg.String() {
		case "esc":
			m.input.Blur()
			m.input.SetValue("")
			m.applySearch()
			return m, nil
		case "enter":
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.applySearch()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "/":
		return m, m.input.Focus()
	case "esc":
		m.input.SetValue("")
		m.applySearch()
		m.setHovered("")
		m.status = ""
	case "tab":
		m.cycleHover(1)
	case "shift+tab":
		m.cycleHover(-1)
	case "enter":
		if m.Hovered() == "" {
			m.cycleHover(1)
			return m, nil
		}
		return m, m.activate(m.Hovered())
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.Ready() {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		id, _ := m.hitTest(msg.X, msg.Y-headerRows)
		m.setHovered(id)
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		id, ok := m.hitTest(msg.X, msg.Y-headerRows)
		if !ok {
			return m, nil
		}
		m.setHovered(id)
		return m, m.activate(id)
	}
	return m, nil
}

func (m *Model) applySearch() {
	if m.view != nil {
		m.view.SetSearch(m.input.Value())
	}
}

func (m *Model) setHovered(id string) {
	if m.view != nil {
		m.view.SetHovered(id)
	}
}

// cycleHover moves the hover to the next (or previous) search match.
func (m *Model) cycleHover(step int) {
	if m.view == nil {
		return
	}
	var candidates []string
	for _, n := range m.graph.Nodes {
		if m.view.Matched(n.ID) {
			candidates = append(candidates, n.ID)
		}
	}
	if len(candidates) == 0 {
		return
	}

	next := 0
	if step < 0 {
		next = len(candidates) - 1
	}
	for i, id := range candidates {
		if id == m.view.Hovered() {
			next = (i + step + len(candidates)) % len(candidates)
			break
		}
	}
	m.view.SetHovered(candidates[next])
}

func (m *Model) activate(id string) tea.Cmd {
	route := explore.Route(m.opts.DocsPrefix, id)
	m.status = "→ " + route
	m.logger.Info("node_activated", "id", id, "route", route)
	if m.opts.Navigate == nil {
		return nil
	}
	return m.opts.Navigate(route)
}

func (m Model) canvasSize() (int, int) {
	return m.width, max(m.height-headerRows-footerRows, 1)
}

func (m Model) projection() projection {
	w, h := m.canvasSize()
	lo, hi := m.sim.Bounds()
	return fit(lo, hi, w, h)
}

// cellOf returns the canvas cell of a node.
func (m Model) cellOf(id string) (int, int, bool) {
	if !m.Ready() {
		return 0, 0, false
	}
	pt, ok := m.sim.Position(id)
	if !ok {
		return 0, 0, false
	}
	x, y := m.projection().toCell(pt)
	return x, y, true
}

// hitTest finds the node drawn nearest to a canvas cell, within one row or
// two columns.
func (m Model) hitTest(x, y int) (string, bool) {
	p := m.projection()
	best, bestDist := "", math.Inf(1)
	for _, n := range m.graph.Nodes {
		pt, ok := m.sim.Position(n.ID)
		if !ok {
			continue
		}
		cx, cy := p.toCell(pt)
		dx := float64(cx-x) / 2
		dy := float64(cy - y)
		d := dx*dx + dy*dy
		if d <= 1 && d < bestDist {
			best, bestDist = n.ID, d
		}
	}
	return best, best != ""
}

func (m Model) View() string {
	if !m.Ready() {
		msg := fmt.Sprintf("\n  %s Loading knowledge graph…", m.spinner.View())
		if m.loadErr != nil {
			msg += "\n\n  " + errorStyle.Render(m.loadErr.Error())
		}
		return msg
	}

	header := m.renderHeader()
	body := m.renderGraph().render()
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render("docgraph")}
	if m.input.Focused() || m.input.Value() != "" {
		parts = append(parts, m.input.View())
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("%d/%d", m.view.MatchCount(), len(m.graph.Nodes))))
	}
	for _, c := range m.opts.Palette.Clusters {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color(m.theme.dark))).Render("●")
		parts = append(parts, dot+" "+c.Label)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderGraph() *canvas {
	w, h := m.canvasSize()
	c := newCanvas(w, h)
	p := m.projection()
	t := m.theme

	for _, l := range m.graph.Links {
		sp, _ := m.sim.Position(l.Source.ID)
		tp, _ := m.sim.Position(l.Target.ID)
		x0, y0 := p.toCell(sp)
		x1, y1 := p.toCell(tp)

		r, fg, bold := glyphLink, t.edgeLink, false
		if l.Kind == graph.EdgeHierarchy {
			r, fg, bold = glyphHierarchy, t.edgeTree, true
		}
		if !m.view.LinkActive(l) {
			fg, bold = t.edgeFaint, false
		}
		c.line(x0, y0, x1, y1, r, fg, bold)
	}

	labelAll := len(m.graph.Nodes) <= labelAllThreshold
	for _, n := range m.graph.Nodes {
		pt, _ := m.sim.Position(n.ID)
		x, y := p.toCell(pt)
		alpha := m.view.NodeAlpha(n.ID)
		color := blend(m.opts.Palette.Cluster(n.Cluster).Color(t.dark), t.background, alpha)

		glyph := glyphDefault
		switch m.view.NodeRadius(n.ID) {
		case explore.RadiusHovered:
			glyph = glyphHovered
		case explore.RadiusMatched:
			glyph = glyphMatched
		}
		c.set(x, y, glyph, color, alpha == explore.FullAlpha, layerNode)

		switch {
		case m.view.ShowLabel(n.ID):
			c.text(x+2, y, n.Title, t.label, n.ID == m.view.Hovered())
		case labelAll:
			c.text(x+2, y, n.Title, blend(t.label, t.background, alpha*0.8), false)
		}
	}
	return c
}

func (m Model) renderFooter() string {
	var tip string
	if tt, ok := m.view.Tooltip(); ok {
		tip = tooltipTitleStyle.Render(tt.Title) + " " + tooltipClusterStyle.Render(tt.Cluster)
		if tt.Summary != "" {
			tip += " " + tt.Summary
		}
	}

	status := subtleStyle.Render("/ search • tab next • enter open • esc clear • q quit")
	if m.status != "" {
		status = statusStyle.Render(m.status)
	}

	style := lipgloss.NewStyle().MaxWidth(m.width)
	return lipgloss.JoinVertical(lipgloss.Left, style.Render(tip), style.Render(status))
}

// Commands

func (m Model) fetchArtifact() tea.Cmd {
	load, ctx := m.opts.Load, m.ctx
	return func() tea.Msg {
		if load == nil {
			return artifactMsg{err: fmt.Errorf("no artifact loader configured")}
		}
		g, err := load(ctx)
		return artifactMsg{graph: g, err: err}
	}
}

// prepareLayout seeds and warms a simulation off the event loop. The
// simulation is handed over to the model and only touched there afterwards.
func prepareLayout(g *explore.Graph, cfg layout.Config, gen int) tea.Cmd {
	ids := g.IDs()
	edges := make([]layout.Edge, len(g.Links))
	for i, l := range g.Links {
		edges[i] = layout.Edge{Source: l.Source.ID, Target: l.Target.ID}
	}
	return func() tea.Msg {
		sim := layout.New(cfg, ids, edges)
		sim.Warmup()
		return layoutMsg{sim: sim, gen: gen}
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
