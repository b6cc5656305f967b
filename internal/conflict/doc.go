// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package conflict detects and reconciles diverged copies of a record.
//
// [Detector] decides whether a client copy carries changes the server has
// not seen: a strictly newer client timestamp when both sides have one,
// otherwise any difference in a configurable set of key fields. This is a
// heuristic, not a vector clock.
//
// [Resolver] applies the strategy registered for a collection in a
// [StrategyTable] (server-wins by default). Manual conflicts are persisted
// and wait for [Resolver.ResolveManually].
package conflict
