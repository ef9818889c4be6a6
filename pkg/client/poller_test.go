// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jasminaramim/mpi-attendence-management/pkg/client"
)

/*
TestPoller_RunsUntilCancelled verifies the loop ticks repeatedly, survives
task errors, and stops promptly on context cancellation.
*/
func TestPoller_RunsUntilCancelled(t *testing.T) {
	runs := &atomic.Int32{}
	ctx, cancel := context.WithCancel(context.Background())

	poller := &client.Poller{
		Interval: 5 * time.Millisecond,
		Task: func(context.Context) error {
			if runs.Add(1) >= 3 {
				cancel()
			}
			return errors.New("transient") // must not stop the loop
		},
	}

	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}
