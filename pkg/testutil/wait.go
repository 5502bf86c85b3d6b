package testutil

import (
	"time"

	"github.com/pkg/errors"
)

// WaitFor polls condition every interval until it holds or timeout elapses
func WaitFor(timeout, interval time.Duration, condition func() bool) error {
	if interval > timeout {
		return errors.Errorf("interval %s exceeds timeout %s", interval, timeout)
	}

	deadline := time.Now().Add(timeout)
	for !condition() {
		if !time.Now().Before(deadline) {
			return errors.Errorf("condition not met within %s", timeout)
		}
		time.Sleep(interval)
	}
	return nil
}
