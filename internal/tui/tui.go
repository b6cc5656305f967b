package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/handler/status"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Console is the command surface the status console drives. It is
// satisfied by [status.Controller].
type Console interface {
	Report(ctx context.Context) (status.Report, error)
	ResetBreaker() models.BreakerSnapshot
	Probe(ctx context.Context) (models.ConnectionMetrics, error)
	Sync(ctx context.Context) (events.DrainSummary, error)
	PendingConflicts(ctx context.Context) ([]models.ConflictRecord, error)
	ResolveConflict(ctx context.Context, id string, chosen models.Record) (models.ConflictRecord, error)
}

// TUI is the interactive status console of the sync client.
type TUI struct {
	console   Console
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(console Console, buildInfo models.AppBuildInfo, log *logger.Logger) *TUI {
	return &TUI{console: console, buildInfo: buildInfo, logger: log.WithComponent("tui")}
}

// Run shows the console until the operator quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	program := tea.NewProgram(newConsoleModel(ctx, t.console, t.buildInfo), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		t.logger.Err(err).Msg("status console failed")
		return err
	}
	return nil
}
