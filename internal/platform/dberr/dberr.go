// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr translates PostgreSQL driver errors into the harvester's
// [apperr] taxonomy so the record store never leaks pgx types upward.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
)

// SQLSTATE codes the record store reacts to.
const (
	codeUniqueViolation = "23505"
	codeSerialization   = "40001"
	codeDeadlock        = "40P01"
)

// Wrap classifies err and wraps it as an [apperr.AppError] labelled with action.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Missing rows
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(action)
	}

	// 2. Duplicate identity
	if IsUniqueViolation(err) {
		return apperr.Conflict(action+": duplicate identity", err)
	}

	// 3. Everything else is a store failure for the current sweep
	return apperr.Store(action, err)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsRetryable reports whether the transaction may succeed if simply re-run.
func IsRetryable(err error) bool {
	code := pgCode(err)
	return code == codeSerialization || code == codeDeadlock
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
