// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ConflictStrategy selects how diverged server and client copies of a record
// are reconciled.
type ConflictStrategy string

const (
	StrategyServerWins ConflictStrategy = "server-wins"
	StrategyClientWins ConflictStrategy = "client-wins"
	StrategyMerge      ConflictStrategy = "merge"
	StrategyManual     ConflictStrategy = "manual"
)

// Valid reports whether s is a known strategy.
func (s ConflictStrategy) Valid() bool {
	switch s {
	case StrategyServerWins, StrategyClientWins, StrategyMerge, StrategyManual:
		return true
	}
	return false
}

// ConflictRecord describes a divergence found while replaying a queued
// operation. It lives until Resolved is set. Operation is the kind of the
// queued mutation that diverged; for a delete ClientData is the tombstone.
type ConflictRecord struct {
	ID         string           `json:"id"`
	Collection string           `json:"collection"`
	RecordID   string           `json:"recordId"`
	Operation  OperationKind    `json:"operation,omitempty"`
	ServerData Record           `json:"serverData"`
	ClientData Record           `json:"clientData"`
	DetectedAt time.Time        `json:"detectedAt"`
	Strategy   ConflictStrategy `json:"strategy,omitempty"`
	Resolved   bool             `json:"resolved"`
	Resolution Record           `json:"resolution,omitempty"`
	ResolvedAt *time.Time       `json:"resolvedAt,omitempty"`
}
