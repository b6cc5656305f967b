// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models holds the data types shared by the sync engine, its
// storage layer, the remote adapter and the reference server.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Well-known record fields.
const (
	// FieldID is the stable identifier of a record inside a collection.
	FieldID = "id"
	// FieldVersion is the server-side optimistic-locking counter.
	FieldVersion = "version"
	// FieldUpdatedAt is the last-modified timestamp (RFC 3339).
	FieldUpdatedAt = "updatedAt"
	// FieldPendingSync marks a record as optimistic (not yet confirmed by the
	// remote service).
	FieldPendingSync = "pendingSync"
)

// TempIDPrefix prefixes client-generated identifiers of records created
// while offline.
const TempIDPrefix = "tmp-"

// Record is a single entry of a collection. It is an opaque document keyed by
// its "id" field.
type Record map[string]any

// ID returns the record identifier rendered as a string, or "" when absent.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	switch v := r[FieldID].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

// Version returns the record's version counter, or 0 when absent.
func (r Record) Version() int64 {
	switch v := r[FieldVersion].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// UpdatedAt parses the record's last-modified timestamp. ok is false when
// the field is missing or unparsable.
func (r Record) UpdatedAt() (t time.Time, ok bool) {
	switch v := r[FieldUpdatedAt].(type) {
	case time.Time:
		return v, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// IsPendingSync reports whether the record carries the optimistic marker.
func (r Record) IsPendingSync() bool {
	v, _ := r[FieldPendingSync].(bool)
	return v
}

// HasTempID reports whether the record id was generated on the client.
func (r Record) HasTempID() bool {
	return IsTempID(r.ID())
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// WithPendingSync returns a copy of the record tagged as optimistic.
func (r Record) WithPendingSync() Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	out[FieldPendingSync] = true
	return out
}

// WithoutPendingSync returns a copy of the record with the optimistic marker
// removed.
func (r Record) WithoutPendingSync() Record {
	out := r.Clone()
	delete(out, FieldPendingSync)
	return out
}

// IsTempID reports whether id is a client-generated temporary identifier.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Record:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}
