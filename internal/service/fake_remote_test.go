// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/models"
)

// fakeRemote is an in-memory remote service with optimistic locking.
type fakeRemote struct {
	mu      sync.Mutex
	data    map[string]map[string]models.Record
	nextID  int
	down    bool
	creates []models.Record
	calls   map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		data:  make(map[string]map[string]models.Record),
		calls: make(map[string]int),
	}
}

func (f *fakeRemote) seed(collection string, records ...models.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[collection] == nil {
		f.data[collection] = make(map[string]models.Record)
	}
	for _, r := range records {
		rec := r.Clone()
		if rec.Version() == 0 {
			rec[models.FieldVersion] = int64(1)
		}
		f.data[collection][rec.ID()] = rec
	}
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeRemote) record(collection, id string) models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[collection][id].Clone()
}

func (f *fakeRemote) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) enter(op string) error {
	f.calls[op]++
	if f.down {
		return &adapter.RemoteError{Kind: adapter.KindTransient, Op: op, Err: adapter.ErrTransportFailure}
	}
	return nil
}

func (f *fakeRemote) List(_ context.Context, collection string, _ models.QueryOptions) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(f.data[collection]))
	for _, r := range f.data[collection] {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (f *fakeRemote) GetOne(_ context.Context, collection, id string) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("get"); err != nil {
		return nil, err
	}
	rec, ok := f.data[collection][id]
	if !ok {
		return nil, &adapter.RemoteError{Kind: adapter.KindNotFound, StatusCode: 404, Op: "get", Err: adapter.ErrNotFound}
	}
	return rec.Clone(), nil
}

func (f *fakeRemote) Create(_ context.Context, collection string, record models.Record) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("create"); err != nil {
		return nil, err
	}
	f.creates = append(f.creates, record.Clone())

	rec := record.WithoutPendingSync()
	if rec.ID() == "" || rec.HasTempID() {
		f.nextID++
		rec[models.FieldID] = fmt.Sprintf("srv-%d", f.nextID)
	}
	rec[models.FieldVersion] = int64(1)
	rec[models.FieldUpdatedAt] = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	if f.data[collection] == nil {
		f.data[collection] = make(map[string]models.Record)
	}
	f.data[collection][rec.ID()] = rec
	return rec.Clone(), nil
}

func (f *fakeRemote) Update(_ context.Context, collection, id string, record models.Record) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("update"); err != nil {
		return nil, err
	}
	current, ok := f.data[collection][id]
	if !ok {
		return nil, &adapter.RemoteError{Kind: adapter.KindNotFound, StatusCode: 404, Op: "update", Err: adapter.ErrNotFound}
	}
	if v := record.Version(); v != 0 && v != current.Version() {
		return nil, &adapter.RemoteError{Kind: adapter.KindConflict, StatusCode: 409, Op: "update", Err: adapter.ErrVersionConflict}
	}
	rec := record.WithoutPendingSync()
	rec[models.FieldID] = id
	rec[models.FieldVersion] = current.Version() + 1
	f.data[collection][id] = rec
	return rec.Clone(), nil
}

func (f *fakeRemote) Delete(_ context.Context, collection, id string, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete"); err != nil {
		return err
	}
	current, ok := f.data[collection][id]
	if !ok {
		return &adapter.RemoteError{Kind: adapter.KindNotFound, StatusCode: 404, Op: "delete", Err: adapter.ErrNotFound}
	}
	if version != 0 && version != current.Version() {
		return &adapter.RemoteError{Kind: adapter.KindConflict, StatusCode: 409, Op: "delete", Err: adapter.ErrVersionConflict}
	}
	delete(f.data[collection], id)
	return nil
}

func (f *fakeRemote) Probe(_ context.Context) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("probe"); err != nil {
		return 0, err
	}
	return 20 * time.Millisecond, nil
}
