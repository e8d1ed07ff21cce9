// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the harvester.

Categories:

  - Metadata: application name and version reported in logs and probes.
  - Timing: operator server timeouts and shutdown budgets.
  - Persistence: file names, Redis keys and placeholder values.
  - Remote API: header names and fixed client identifiers.

Using this package keeps magic strings and numbers out of the scan engine.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-harvester"
	AppVersion = "0.1.0-dev"
)

// # Operator Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout bounds every operator request and every database statement.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for the ops server and the scheduler on exit.
	ShutdownTimeout = 30 * time.Second

	// SignalGracePeriod is how long a running sweep may continue after the cursor was flushed.
	SignalGracePeriod = 5 * time.Second

	// StartupTimeout bounds connecting to PostgreSQL and Redis at boot.
	StartupTimeout = 30 * time.Second
)

// # Durable State

const (
	// CursorFileName is the cursor state file inside the data directory.
	CursorFileName = "cursor.json"

	// TokenFileName is the persisted session token inside the data directory.
	TokenFileName = ".token"

	// RedisKeyCursor stores the cursor state when the redis backend is selected.
	RedisKeyCursor = "harvest:cursor"

	// RedisKeyToken stores the session token when the redis backend is selected.
	RedisKeyToken = "harvest:session:token"
)

// # Record Mapping

const (
	// MissingTextPlaceholder replaces absent optional text fields (author, description).
	MissingTextPlaceholder = "NULL"
)

// # Remote API

const (
	HeaderAuthorization = "authorization"
	HeaderAPIKey        = "api-key"
	HeaderTime          = "time"
	HeaderNonce         = "nonce"
	HeaderSignature     = "signature"
	HeaderAccept        = "accept"
	HeaderAppChannel    = "app-channel"
	HeaderAppVersion    = "app-version"
	HeaderAppPlatform   = "app-platform"
	HeaderAppUUID       = "app-uuid"
	HeaderImageQuality  = "image-quality"
	HeaderContentType   = "Content-Type"

	// HeaderXRequestID correlates operator requests with log lines.
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"

	AcceptPicaComic = "application/vnd.picacomic.com.v1+json"
	AppChannel      = "1"
	AppVersionName  = "2.2.1.3.3.4"
	AppPlatform     = "android"
	AppUUID         = "defaultUuid"
	ImageQuality    = "original"
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)
