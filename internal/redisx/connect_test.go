package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{
		URL:            "redis://" + mr.Addr() + "/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, Healthcheck(client)(context.Background()))
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), Config{URL: "http://nope"})
	assert.ErrorIs(t, err, ErrFailedToParseURL)
}

func TestConnect_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(context.Background(), Config{
		URL:            "redis://" + addr,
		RetryAttempts:  2,
		RetryInterval:  5 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestHealthcheck_Down(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := Connect(context.Background(), Config{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	assert.ErrorIs(t, Healthcheck(client)(context.Background()), ErrHealthcheckFailed)
}
