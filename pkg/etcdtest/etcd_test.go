//go:build integration

package etcdtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
	v3 "go.etcd.io/etcd/client/v3"
)

func TestStartEtcd(t *testing.T) {
	ctx := context.Background()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	client, closeFunc, err := StartEtcd(pool)
	require.NoError(t, err)
	defer closeFunc()

	get, err := client.Get(ctx, "/vault/", v3.WithPrefix())
	require.NoError(t, err)
	require.Empty(t, get.Kvs)

	for i := 0; i < 3; i++ {
		_, err := client.Put(ctx, fmt.Sprintf("/vault/%d", i), fmt.Sprintf("value-%d", i))
		require.NoError(t, err)
	}

	get, err = client.Get(ctx, "/vault/", v3.WithPrefix())
	require.NoError(t, err)
	require.Len(t, get.Kvs, 3)
}
