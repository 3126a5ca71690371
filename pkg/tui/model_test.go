package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/layout"
)

const artifact = `{"n":[` +
	`["intro","Welcome"],` +
	`["infrastructure/index","Infra","Clusters and networks"],` +
	`["infrastructure/dns","DNS","Zones",["Route53"]],` +
	`["projects/alpha","Alpha","Uses DNS"]` +
	`],"e":[` +
	`["infrastructure/index","infrastructure/dns","h"],` +
	`["projects/alpha","infrastructure/dns","l"],` +
	`["intro","projects/alpha","l"]` +
	`]}`

type harness struct {
	model     Model
	navigated []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	g, err := explore.Load([]byte(artifact), explore.DefaultPalette)
	require.NoError(t, err)

	h := &harness{}
	h.model = New(Options{
		Load: func(ctx context.Context) (*explore.Graph, error) { return g, nil },
		Navigate: func(route string) tea.Cmd {
			h.navigated = append(h.navigated, route)
			return func() tea.Msg { return NavigatedMsg{Route: route} }
		},
		DocsPrefix: "docs",
		Dark:       true,
	})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	m, cmd := h.model.Update(msg)
	h.model = m.(Model)
	return cmd
}

// run executes cmd and returns the message, expanding batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findLayout(t *testing.T, msgs []tea.Msg) layoutMsg {
	t.Helper()
	for _, msg := range msgs {
		if lm, ok := msg.(layoutMsg); ok {
			return lm
		}
	}
	t.Fatal("no layout message produced")
	return layoutMsg{}
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	cmd := h.send(h.model.fetchArtifact()())
	h.send(findLayout(t, run(cmd)))
	require.True(t, h.model.Ready())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadingState(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.model.Ready())
	assert.Contains(t, h.model.View(), "Loading knowledge graph")
}

func TestModel_FetchFailureStaysLoading(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(artifactMsg{err: errors.New("connection refused")})
	assert.Nil(t, cmd)
	assert.False(t, h.model.Ready())

	view := h.model.View()
	assert.Contains(t, view, "Loading knowledge graph")
	assert.Contains(t, view, "connection refused")
}

func TestModel_MissingLoader(t *testing.T) {
	m := New(Options{})
	msg := m.fetchArtifact()()
	am, ok := msg.(artifactMsg)
	require.True(t, ok)
	assert.Error(t, am.err)
}

func TestModel_RendersAfterGraphAndLayout(t *testing.T) {
	h := newHarness(t)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})

	cmd := h.send(h.model.fetchArtifact()())
	assert.False(t, h.model.Ready(), "graph alone is not enough")

	lm := findLayout(t, run(cmd))
	frameCmd := h.send(lm)
	assert.True(t, h.model.Ready())
	assert.NotNil(t, frameCmd)

	view := h.model.View()
	assert.Contains(t, view, "docgraph")
	assert.Contains(t, view, "Infra")
	assert.Contains(t, view, "tab next")
}

func TestModel_StaleLayoutIgnored(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(h.model.fetchArtifact()())
	stale := findLayout(t, run(cmd))
	stale.gen = -1

	h.send(stale)
	assert.False(t, h.model.Ready())
}

func TestModel_FramesStopAfterCooldown(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	frames := 0
	for h.send(frameMsg{}) != nil {
		frames++
		require.LessOrEqual(t, frames, layout.DefaultConfig().CooldownTicks)
	}
	assert.Nil(t, h.send(frameMsg{}))
}

func TestModel_Search(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.send(runes("/"))
	assert.True(t, h.model.input.Focused())

	for _, r := range "route" {
		h.send(runes(string(r)))
	}
	assert.Equal(t, "route", h.model.Search())
	assert.Equal(t, 1, h.model.view.MatchCount())
	assert.Contains(t, h.model.View(), "1/4")

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, h.model.input.Focused())
	assert.Equal(t, "route", h.model.Search())

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", h.model.Search())
	assert.False(t, h.model.view.Searching())
}

func TestModel_EscInsideSearchClears(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.send(runes("/"))
	h.send(runes("x"))
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, h.model.input.Focused())
	assert.Equal(t, "", h.model.Search())
}

func TestModel_TabCyclesMatches(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "intro", h.model.Hovered())
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "infrastructure/index", h.model.Hovered())
	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "projects/alpha", h.model.Hovered())

	h.model.input.SetValue("infra")
	h.model.applySearch()
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "infrastructure/index", h.model.Hovered())
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "infrastructure/dns", h.model.Hovered())

	view := h.model.View()
	assert.Contains(t, view, "DNS")
	assert.Contains(t, view, "Zones")
}

func TestModel_EnterNavigates(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	// first enter only picks a node
	assert.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, "intro", h.model.Hovered())

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"/docs/intro"}, h.navigated)
	assert.Equal(t, "→ /docs/intro", h.model.Status())

	h.send(cmd())
	assert.Equal(t, "opened /docs/intro", h.model.Status())

	h.send(NavigatedMsg{Route: "/docs/x", Err: errors.New("no browser")})
	assert.True(t, strings.HasPrefix(h.model.Status(), "could not open /docs/x"))
}

func TestModel_MouseHoverAndClick(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	x, y, ok := h.model.cellOf("infrastructure/dns")
	require.True(t, ok)

	h.send(tea.MouseMsg{X: x, Y: y + headerRows, Action: tea.MouseActionMotion})
	hovered := h.model.Hovered()
	require.NotEmpty(t, hovered)
	hx, hy, _ := h.model.cellOf(hovered)
	assert.LessOrEqual(t, abs(hx-x), 2)
	assert.LessOrEqual(t, abs(hy-y), 1)

	cmd := h.send(tea.MouseMsg{X: x, Y: y + headerRows, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.NotNil(t, cmd)
	require.Len(t, h.navigated, 1)
	assert.Equal(t, "/docs/"+hovered, h.navigated[0])

	// far away from every node
	h.send(tea.MouseMsg{X: -50, Y: -50, Action: tea.MouseActionMotion})
	assert.Equal(t, "", h.model.Hovered())
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, h.model.ctx.Err())
}
