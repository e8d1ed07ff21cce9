// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into application kinds.
*/
func TestWrap(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}

	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"no_rows", pgx.ErrNoRows, apperr.KindNotFound},
		{"unique", unique, apperr.KindConflict},
		{"wrapped_unique", fmt.Errorf("insert: %w", unique), apperr.KindConflict},
		{"other", errors.New("connection refused"), apperr.KindStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, apperr.KindOf(dberr.Wrap(tt.err, "insert comic")))
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestIsRetryable recognises serialization failures and deadlocks.
*/
func TestIsRetryable(t *testing.T) {
	assert.True(t, dberr.IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, dberr.IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, dberr.IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dberr.IsRetryable(errors.New("x")))
}
