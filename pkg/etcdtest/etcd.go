package etcdtest

import (
	"context"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	v3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/code-payments/code-vault/pkg/retry"
	"github.com/code-payments/code-vault/pkg/retry/backoff"
)

const (
	containerName     = "quay.io/coreos/etcd"
	containerVersion  = "v3.5.13"
	containerAutoKill = 120 * time.Second

	clientPort = 2379
)

// StartEtcd starts a single node etcd container and returns a connected
// client. The returned func closes the client and removes the container.
func StartEtcd(pool *dockertest.Pool) (client *v3.Client, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Cmd: []string{
			"etcd",
			"--name", "etcd0",
			"--listen-client-urls", fmt.Sprintf("http://0.0.0.0:%d", clientPort),
			"--advertise-client-urls", fmt.Sprintf("http://0.0.0.0:%d", clientPort),
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start resource")
	}

	purge := func() {
		if err := pool.Purge(resource); err != nil {
			logrus.StandardLogger().WithError(err).Warn("failure purging etcd container")
		}
	}

	// Expire() never returns an error
	_ = resource.Expire(uint(containerAutoKill.Seconds()))

	endpoint := resource.GetHostPort(fmt.Sprintf("%d/tcp", clientPort))

	_, err = retry.Retry(
		func() error {
			if client != nil {
				client.Close()
			}

			client, err = v3.New(v3.Config{
				Endpoints:   []string{endpoint},
				DialTimeout: time.Second,
				Logger:      zap.NewNop(),
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			_, err = client.Status(ctx, endpoint)
			return err
		},
		retry.Limit(50),
		retry.Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)
	if err != nil {
		if client != nil {
			client.Close()
		}
		purge()
		return nil, func() {}, errors.Wrap(err, "timed out waiting for etcd container to become available")
	}

	return client, func() {
		client.Close()
		purge()
	}, nil
}
