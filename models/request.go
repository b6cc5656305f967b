package models

// RecordRef addresses one record of a collection together with the version
// the caller last saw. Version 0 means "any version".
type RecordRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Version    int64  `json:"version,omitempty"`
}
