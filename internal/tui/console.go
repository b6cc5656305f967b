package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/handler/status"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const refreshInterval = time.Second

var writeClipboard = clipboard.WriteAll

type consoleModel struct {
	ctx       context.Context
	console   Console
	buildInfo models.AppBuildInfo

	report    status.Report
	conflicts []models.ConflictRecord
	idx       int
	loaded    bool

	busy    bool
	spinner spinner.Model
	status  string

	showError    bool
	errorOverlay errorOverlayModel
}

func newConsoleModel(ctx context.Context, console Console, buildInfo models.AppBuildInfo) consoleModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return consoleModel{ctx: ctx, console: console, buildInfo: buildInfo, spinner: s}
}

func (m consoleModel) Init() tea.Cmd {
	return tea.Batch(m.cmdRefresh(), m.spinner.Tick)
}

func (m consoleModel) current() (models.ConflictRecord, bool) {
	if m.idx < 0 || m.idx >= len(m.conflicts) {
		return models.ConflictRecord{}, false
	}
	return m.conflicts[m.idx], true
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		if msg.err != nil {
			m = m.withError(msg.err)
			return m, m.cmdTick()
		}
		m.loaded = true
		m.report = msg.report
		m.conflicts = msg.conflicts
		if m.idx >= len(m.conflicts) {
			m.idx = len(m.conflicts) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		return m, m.cmdTick()
	case tickMsg:
		return m, m.cmdRefresh()
	case syncDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m.withError(msg.err), nil
		}
		s := msg.summary
		m.status = fmt.Sprintf("Sync: %d replayed, %d failed, %d dropped, %d conflicts, %d remaining",
			s.Replayed, s.Failed, s.Dropped, s.Conflicts, s.Remaining)
		return m, m.cmdRefresh()
	case probeDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m.withError(msg.err), nil
		}
		m.status = fmt.Sprintf("Probe: quality %s, average %s", msg.metrics.Quality, msg.metrics.AverageLatency)
		return m, m.cmdRefresh()
	case resetDoneMsg:
		m.report.Breaker = msg.snapshot
		m.status = "Circuit breaker reset"
		return m, nil
	case resolvedMsg:
		m.busy = false
		if msg.err != nil {
			return m.withError(msg.err), nil
		}
		m.status = "Resolved conflict " + shortID(msg.conflict.ID)
		return m, m.cmdRefresh()
	case copiedMsg:
		if msg.err != nil {
			return m.withError(msg.err), nil
		}
		m.status = "Conflict copied to clipboard"
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, keys.quit) {
		return m, tea.Quit
	}
	if m.showError {
		if key.Matches(keyMsg, keys.esc) {
			m.showError = false
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.idx < len(m.conflicts)-1 {
			m.idx++
		}
	case key.Matches(keyMsg, keys.reset):
		return m, m.cmdReset()
	case key.Matches(keyMsg, keys.sync):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Draining sync queue..."
		return m, m.cmdSync()
	case key.Matches(keyMsg, keys.probe):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Probing remote..."
		return m, m.cmdProbe()
	case key.Matches(keyMsg, keys.acceptServer):
		return m.resolveCurrent(func(c models.ConflictRecord) models.Record { return c.ServerData })
	case key.Matches(keyMsg, keys.acceptClient):
		return m.resolveCurrent(func(c models.ConflictRecord) models.Record { return c.ClientData })
	case key.Matches(keyMsg, keys.copy):
		c, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, cmdCopy(c)
	}

	return m, nil
}

func (m consoleModel) resolveCurrent(pick func(models.ConflictRecord) models.Record) (tea.Model, tea.Cmd) {
	c, ok := m.current()
	if !ok || m.busy {
		return m, nil
	}
	m.busy = true
	return m, m.cmdResolve(c.ID, pick(c))
}

func (m consoleModel) withError(err error) consoleModel {
	m.showError = true
	m.errorOverlay = errorOverlayModel{message: err.Error()}
	return m
}

func (m consoleModel) cmdRefresh() tea.Cmd {
	return func() tea.Msg {
		report, err := m.console.Report(m.ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		conflicts, err := m.console.PendingConflicts(m.ctx)
		return refreshMsg{report: report, conflicts: conflicts, err: err}
	}
}

func (m consoleModel) cmdTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m consoleModel) cmdSync() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.console.Sync(m.ctx)
		return syncDoneMsg{summary: summary, err: err}
	}
}

func (m consoleModel) cmdProbe() tea.Cmd {
	return func() tea.Msg {
		metrics, err := m.console.Probe(m.ctx)
		return probeDoneMsg{metrics: metrics, err: err}
	}
}

func (m consoleModel) cmdReset() tea.Cmd {
	return func() tea.Msg {
		return resetDoneMsg{snapshot: m.console.ResetBreaker()}
	}
}

func (m consoleModel) cmdResolve(id string, chosen models.Record) tea.Cmd {
	return func() tea.Msg {
		c, err := m.console.ResolveConflict(m.ctx, id, chosen)
		return resolvedMsg{conflict: c, err: err}
	}
}

func cmdCopy(c models.ConflictRecord) tea.Cmd {
	return func() tea.Msg {
		raw, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{err: writeClipboard(string(raw))}
	}
}

func (m consoleModel) View() string {
	if m.showError {
		return appStyle.Render(m.errorOverlay.View())
	}

	title := fmt.Sprintf("Offline sync %s (%s)", m.buildInfo.BuildVersion(), m.buildInfo.BuildCommit())
	if m.busy {
		title += "  " + m.spinner.View()
	}
	if !m.loaded {
		return appStyle.Render(renderPage(title, "Loading...", ""))
	}

	var b strings.Builder
	r := m.report

	if r.Online {
		b.WriteString("Network:    " + onlineStyle.Render("ONLINE") + "\n")
	} else {
		b.WriteString("Network:    " + offlineStyle.Render("OFFLINE") + "\n")
	}
	fmt.Fprintf(&b, "Quality:    %s (avg %s, success %.0f%%)\n",
		r.Connection.Quality, r.Connection.AverageLatency.Round(time.Millisecond), r.Connection.SuccessRate()*100)
	fmt.Fprintf(&b, "Last probe: %s\n", timeOrDash(r.Connection.LastProbeAt))
	if r.Connection.LastError != "" {
		fmt.Fprintf(&b, "Last error: %s\n", fitText(r.Connection.LastError, 60))
	}
	fmt.Fprintf(&b, "Breaker:    %s (%d failures", r.Breaker.State, r.Breaker.FailureCount)
	if !r.Breaker.NextAttemptAt.IsZero() {
		fmt.Fprintf(&b, ", next attempt %s", timeOrDash(r.Breaker.NextAttemptAt))
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "Queue:      %d pending\n", r.QueueLength)

	fmt.Fprintf(&b, "\nConflicts awaiting a decision: %d\n", len(m.conflicts))
	for i, c := range m.conflicts {
		line := fmt.Sprintf("%s  %s/%s  %s", shortID(c.ID), c.Collection, c.RecordID, timeOrDash(c.DetectedAt))
		if i == m.idx {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if c, ok := m.current(); ok {
		b.WriteString("\nServer: " + fitText(compactJSON(c.ServerData), 70) + "\n")
		b.WriteString("Client: " + fitText(compactJSON(c.ClientData), 70) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	hotKeys := "r reset breaker  s sync  p probe  ↑/↓ select  a keep server  c keep client  y copy"
	return appStyle.Render(renderPage(title, b.String(), hotKeys))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func compactJSON(r models.Record) string {
	raw, err := json.Marshal(r)
	if err != nil {
		return "-"
	}
	return string(raw)
}
