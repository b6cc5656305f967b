// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spySyncService counts Drain calls.
type spySyncService struct {
	calls atomic.Int64
	err   error
}

func (s *spySyncService) Drain(_ context.Context) (events.DrainSummary, error) {
	s.calls.Add(1)
	return events.DrainSummary{}, s.err
}

func (s *spySyncService) DeadLetters(_ context.Context) ([]models.DeadLetter, error) {
	return nil, nil
}

// ── NewSyncJob ───────────────────────────────────────────────────────────────

func TestNewSyncJob_DefaultInterval(t *testing.T) {
	job := NewSyncJob(&spySyncService{}, nil, 0, logger.Nop())
	require.NotNil(t, job)
	assert.Equal(t, config.DefaultSyncInterval, job.(*syncJob).interval)
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestSyncJob_DrainsOnInterval(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, newOnline(true), 10*time.Millisecond, logger.Nop())

	job.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	assert.GreaterOrEqual(t, spy.calls.Load(), int64(3))
}

func TestSyncJob_IntervalSkippedWhileOffline(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, newOnline(false), 10*time.Millisecond, logger.Nop())

	job.Start(context.Background())
	time.Sleep(45 * time.Millisecond)
	job.Stop()

	assert.Zero(t, spy.calls.Load())
}

func TestSyncJob_TriggerDrains(t *testing.T) {
	spy := &spySyncService{err: ErrDrainInProgress}
	job := NewSyncJob(spy, newOnline(false), time.Hour, logger.Nop())

	job.Start(context.Background())
	defer job.Stop()

	job.Trigger()
	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSyncJob_TriggersCollapse(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, nil, time.Hour, logger.Nop())

	// not running: only one trigger fits
	job.Trigger()
	job.Trigger()
	job.Trigger()

	job.Start(context.Background())
	defer job.Stop()

	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), spy.calls.Load())
}

func TestSyncJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spySyncService{}
	job := NewSyncJob(spy, nil, 10*time.Millisecond, logger.Nop())

	job.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, spy.calls.Load())
}

func TestSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := NewSyncJob(&spySyncService{}, nil, time.Minute, logger.Nop())
	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_Run_ReturnsOnCancel(t *testing.T) {
	job := NewSyncJob(&spySyncService{}, nil, time.Minute, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
