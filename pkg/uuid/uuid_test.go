// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-harvester/pkg/uuid"
)

func TestNew_IsVersion7(t *testing.T) {
	parsed, err := googleuuid.Parse(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())
}

func TestRandom_HasNoDashes(t *testing.T) {
	nonce := uuid.Random()
	assert.Len(t, nonce, 32)
	assert.NotContains(t, nonce, "-")
	assert.NotEqual(t, nonce, uuid.Random())
}
