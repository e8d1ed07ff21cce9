// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by the scan loop and the
// operator middleware.
//
// # Safety
//
// Using a private, unexported type for keys prevents collisions with third-party
// packages that might also use context for storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeySweepID is the context key for the id of the running sweep.
	KeySweepID key = "sweep_id"

	// KeyLogger is the context key for the scoped [*log/slog.Logger].
	KeyLogger key = "logger"
)
