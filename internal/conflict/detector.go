package conflict

import (
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Detector compares a server and a client copy of one record.
type Detector struct {
	keyFields []string
}

// NewDetector returns a detector comparing keyFields when timestamps are
// missing. An empty list falls back to [config.DefaultKeyFields].
func NewDetector(keyFields []string) Detector {
	if len(keyFields) == 0 {
		keyFields = config.DefaultKeyFields
	}
	return Detector{keyFields: append([]string(nil), keyFields...)}
}

// DetectConflict uses the default key fields.
func DetectConflict(server, client models.Record) bool {
	return NewDetector(nil).Detect(server, client)
}

// Detect reports whether server and client have diverged. A missing side is
// never a conflict.
func (d Detector) Detect(server, client models.Record) bool {
	if server == nil || client == nil {
		return false
	}

	serverAt, serverOK := server.UpdatedAt()
	clientAt, clientOK := client.UpdatedAt()
	if serverOK && clientOK {
		return clientNewer(serverAt, clientAt)
	}

	for _, field := range d.keyFields {
		sv, sok := server[field]
		cv, cok := client[field]
		if !sok && !cok {
			continue
		}
		if sok != cok || !equalValues(sv, cv) {
			return true
		}
	}
	return false
}

func clientNewer(serverAt, clientAt time.Time) bool {
	return clientAt.After(serverAt)
}

// equalValues compares by canonical JSON so that 1 and 1.0, or maps built in
// different orders, are equal.
func equalValues(a, b any) bool {
	fa, errA := utils.Fingerprint(a)
	fb, errB := utils.Fingerprint(b)
	if errA != nil || errB != nil {
		return false
	}
	return fa == fb
}
