// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestValidate_Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewRecordValidator()
	require.NotNil(t, v)
	ctx := context.Background()

	ref := models.RecordRef{Collection: "widgets", ID: "w1", Version: 2}
	assert.NoError(t, v.Validate(ctx, ref))
	assert.NoError(t, v.Validate(ctx, &ref))

	rec := models.Record{"id": "w1", "name": "bolt"}
	assert.NoError(t, v.Validate(ctx, rec))
	assert.NoError(t, v.Validate(ctx, &rec))

	opts := models.QueryOptions{Limit: 10, OrderBy: "name"}
	assert.NoError(t, v.Validate(ctx, opts))
	assert.NoError(t, v.Validate(ctx, &opts))

	assert.ErrorIs(t, v.Validate(ctx, 42), ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// RecordRef
// ---------------------------------------------------------------------------

func TestValidate_RecordRef(t *testing.T) {
	v := NewRecordValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		ref     models.RecordRef
		fields  []string
		wantErr error
	}{
		{name: "valid", ref: models.RecordRef{Collection: "line-3_sensors", ID: "abc"}},
		{name: "empty collection", ref: models.RecordRef{ID: "abc"}, wantErr: ErrInvalidCollection},
		{name: "collection with slash", ref: models.RecordRef{Collection: "a/b", ID: "abc"}, wantErr: ErrInvalidCollection},
		{name: "empty id", ref: models.RecordRef{Collection: "widgets"}, wantErr: ErrInvalidRecordID},
		{name: "temporary id", ref: models.RecordRef{Collection: "widgets", ID: "tmp-1"}, wantErr: ErrTempRecordID},
		{name: "negative version", ref: models.RecordRef{Collection: "widgets", ID: "a", Version: -1}, wantErr: ErrInvalidVersion},
		{name: "collection only", ref: models.RecordRef{Collection: "widgets"}, fields: []string{FieldCollection}},
		{name: "unknown field", ref: models.RecordRef{Collection: "widgets"}, fields: []string{"nope"}, wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.ref, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func TestValidate_Record(t *testing.T) {
	v := NewRecordValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.Validate(ctx, models.Record{}), ErrEmptyRecord)
	assert.ErrorIs(t, v.Validate(ctx, models.Record{"bad key": 1}), ErrInvalidFieldName)
	assert.ErrorIs(t, v.Validate(ctx, models.Record{"name": "x"}, FieldRecordID), ErrInvalidRecordID)
	assert.ErrorIs(t, v.Validate(ctx, models.Record{"version": -3}, FieldVersion), ErrInvalidVersion)
	assert.NoError(t, v.Validate(ctx, models.Record{"id": "w1"}, FieldBody, FieldRecordID, FieldVersion))
}

// ---------------------------------------------------------------------------
// QueryOptions
// ---------------------------------------------------------------------------

func TestValidate_QueryOptions(t *testing.T) {
	v := NewRecordValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.Validate(ctx, models.QueryOptions{Limit: -1}), ErrInvalidPaging)
	assert.ErrorIs(t, v.Validate(ctx, models.QueryOptions{Offset: -5}), ErrInvalidPaging)
	assert.ErrorIs(t, v.Validate(ctx, models.QueryOptions{OrderBy: "name; drop"}), ErrInvalidFieldName)
	assert.ErrorIs(t, v.Validate(ctx, models.QueryOptions{Filter: map[string]string{"a.b": "1"}}), ErrInvalidFieldName)
	assert.NoError(t, v.Validate(ctx, models.QueryOptions{Filter: map[string]string{"status": "ok"}}))
}
