package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/recruiting-board/internal/db"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := db.NewRedisClient(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := db.NewRedisClient(context.Background(), "http://not-redis")
	require.Error(t, err)
}

func TestNewPostgresPool_BadURL(t *testing.T) {
	_, err := db.NewPostgresPool(context.Background(), "postgres://%zz")
	require.Error(t, err)
}
