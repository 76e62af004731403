// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndpointFunc(t *testing.T) {
	fn := NewEndpointFunc("epp.example.test", 700)
	result, err := fn.Call(context.Background(), Unit{})

	require.NoError(t, err)
	assert.Equal(t, "epp.example.test:700", result)
}

