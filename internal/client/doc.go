// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the offline sync engine into a runnable process.
//
// It wires the local cache, remote adapter, health monitor, circuit breaker,
// conflict resolver and sync job together, exposes them through the operator
// status API and optionally the terminal status console, and runs the
// long-lived parts as workers under one lifecycle.
package client
