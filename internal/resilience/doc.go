// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package resilience guards calls to the Remote Data Service.
//
// [RunWithRetry] repeats a single fallible call with capped exponential
// backoff and jitter on top of github.com/sethvargo/go-retry. It holds no
// state between invocations.
//
// [CircuitBreaker] tracks consecutive failures and fails fast with
// [ErrCircuitOpen] while the remote looks unhealthy, letting exactly one
// trial call through once the recovery timeout has elapsed.
package resilience
