// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "CRON_EXPRESSION", "*/30 * * * *", false},
		{"empty_string", "CRON_EXPRESSION", "", true},
		{"whitespace_only", "CRON_EXPRESSION", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_URL checks the absolute URL rule.
*/
func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"https", "https://picaapi.picacomic.com/", true},
		{"http_with_port", "http://127.0.0.1:8080", true},
		{"missing_scheme", "picaapi.picacomic.com", false},
		{"socks", "socks5://proxy:1080", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.URL("CATALOG_BASE_URL", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("PICACOMIC_USER", "").
		OneOf("STATE_BACKEND", "disk", "file", "redis").
		Positive("REQUEST_RPS", 0).
		PositiveDuration("REQUEST_TIMEOUT", -time.Second).
		Range("KNOWN_CACHE_SIZE", 5, 1, 4).
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 5)
	assert.Contains(t, err.Error(), "STATE_BACKEND: Must be one of: file, redis")
}

/*
TestValidator_Custom only fails when the condition holds.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("REDIS_URL", false, "unused")
	assert.NoError(t, v.Err())

	v.Custom("REDIS_URL", true, "Required by the redis state backend")
	assert.Error(t, v.Err())
}
