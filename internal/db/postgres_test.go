package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolSettingsDefaults(t *testing.T) {
	ps := PoolSettings{}.withDefaults()
	assert.Equal(t, int32(8), ps.MaxConns)
	assert.Equal(t, int32(2), ps.MinConns)

	ps = PoolSettings{MaxConns: 20, MinConns: 5}.withDefaults()
	assert.Equal(t, int32(20), ps.MaxConns)
	assert.Equal(t, int32(5), ps.MinConns)

	// The floor never exceeds the ceiling.
	ps = PoolSettings{MaxConns: 1, MinConns: 4}.withDefaults()
	assert.Equal(t, int32(1), ps.MinConns)
}
