// Package config provides configuration loading, merging, and validation
// facilities for the sync client and the reference server.
//
// Configuration is assembled from multiple sources. Sources are merged with
// mergo in the following order, and a field set by an earlier source is never
// overwritten by a later one:
//  1. Environment variables
//  2. Command-line flags
//  3. Config file (JSON or YAML, chosen by file extension)
//
// The main entry points are [GetClientConfig] for the sync client and
// [GetServerConfig] for the reference remote service.
package config
