package tui

import (
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/handler/status"
	"github.com/MKhiriev/go-offline-sync/models"
)

type refreshMsg struct {
	report    status.Report
	conflicts []models.ConflictRecord
	err       error
}

type tickMsg struct{}

type syncDoneMsg struct {
	summary events.DrainSummary
	err     error
}

type probeDoneMsg struct {
	metrics models.ConnectionMetrics
	err     error
}

type resetDoneMsg struct {
	snapshot models.BreakerSnapshot
}

type resolvedMsg struct {
	conflict models.ConflictRecord
	err      error
}

type copiedMsg struct {
	err error
}
