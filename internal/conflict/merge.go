package conflict

import (
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Merge deep-merges client into server. Arrays are unioned, keeping server
// order and dropping structural duplicates; nested objects merge field by
// field; any other clash resolves to the client value. Neither input is
// modified.
func Merge(server, client models.Record) models.Record {
	out := server.Clone()
	if out == nil {
		out = models.Record{}
	}
	for k, cv := range client {
		sv, ok := out[k]
		if !ok {
			out[k] = cloneAny(cv)
			continue
		}
		out[k] = mergeValues(sv, cv)
	}
	return out
}

func mergeValues(server, client any) any {
	switch c := client.(type) {
	case []any:
		if s, ok := server.([]any); ok {
			return unionArrays(s, c)
		}
	case map[string]any:
		if s, ok := asMap(server); ok {
			return map[string]any(Merge(s, c))
		}
	case models.Record:
		if s, ok := asMap(server); ok {
			return Merge(s, c)
		}
	}
	return cloneAny(client)
}

func asMap(v any) (models.Record, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case models.Record:
		return m, true
	}
	return nil, false
}

func unionArrays(server, client []any) []any {
	out := make([]any, 0, len(server)+len(client))
	seen := make(map[string]struct{}, len(server)+len(client))
	add := func(v any) {
		key, err := utils.Fingerprint(v)
		if err == nil {
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
		}
		out = append(out, cloneAny(v))
	}
	for _, v := range server {
		add(v)
	}
	for _, v := range client {
		add(v)
	}
	return out
}

func cloneAny(v any) any {
	return models.Record{"v": v}.Clone()["v"]
}
