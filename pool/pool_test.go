package pool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bolt-go/bolt/pool"
)

func TestNewRejectsEmptyAddress(t *testing.T) {
	_, err := pool.New(pool.Config{})
	require.Error(t, err)
}

func TestNewAppliesDefaults(t *testing.T) {
	m, err := pool.New(pool.Config{Address: "localhost:7687"})
	require.NoError(t, err)
	require.NotNil(t, m)
	require.NoError(t, m.Close())
}
