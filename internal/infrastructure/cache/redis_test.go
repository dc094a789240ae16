package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := NewRedisClient(mr.Addr(), "", 2)

	require.NoError(t, rc.Connect(context.Background()))
	require.NoError(t, rc.HealthCheck(context.Background()))

	opt := rc.AsynqOpt()
	assert.Equal(t, mr.Addr(), opt.Addr)
	assert.Equal(t, 2, opt.DB)

	mr.Close()
	assert.Error(t, rc.HealthCheck(context.Background()))
	require.NoError(t, rc.Close())
}
