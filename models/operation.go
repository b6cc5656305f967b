// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// OperationKind is the mutation type of a queued operation.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// Valid reports whether k is one of the known operation kinds.
func (k OperationKind) Valid() bool {
	switch k {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// QueuedOperation is a pending mutation waiting to be replayed against the
// remote service. ID identifies the operation itself and is never reused;
// RecordID identifies the record the mutation targets.
type QueuedOperation struct {
	ID         string        `json:"id"`
	Kind       OperationKind `json:"kind"`
	Collection string        `json:"collection"`
	RecordID   string        `json:"recordId,omitempty"`
	Payload    Record        `json:"payload,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	RetryCount int           `json:"retryCount"`
}

// DeadLetter is a queued operation that was dropped after exhausting its
// replay attempts.
type DeadLetter struct {
	Operation QueuedOperation `json:"operation"`
	LastError string          `json:"lastError"`
	DroppedAt time.Time       `json:"droppedAt"`
}

// QueryOptions narrows a list request. Filter values are matched for
// equality against top-level record fields.
type QueryOptions struct {
	Limit   int               `json:"limit,omitempty"`
	Offset  int               `json:"offset,omitempty"`
	OrderBy string            `json:"orderBy,omitempty"`
	Desc    bool              `json:"desc,omitempty"`
	Filter  map[string]string `json:"filter,omitempty"`
}
