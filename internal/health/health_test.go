package health

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func noRedis() *redis.Client { return nil }

func TestCheckBasic(t *testing.T) {
	status := newHealthChecker(stubPinger{}, noRedis).CheckBasic()
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Database.Status)
	assert.Equal(t, "disabled", status.Redis.Status)
	assert.Nil(t, status.Host)
}

func TestCheckBasic_DatabaseDown(t *testing.T) {
	status := newHealthChecker(stubPinger{err: errors.New("connection refused")}, noRedis).CheckBasic()
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "connection refused", status.Database.Error)

	status = newHealthChecker(nil, nil).CheckBasic()
	assert.Equal(t, "unhealthy", status.Status)
}

func TestCheckDetailed(t *testing.T) {
	status := newHealthChecker(stubPinger{}, noRedis).CheckDetailed()
	if assert.NotNil(t, status.Host) {
		assert.Positive(t, status.Host.Goroutines)
	}
}
