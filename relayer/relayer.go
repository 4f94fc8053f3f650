// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package relayer drives the finalize step for messages created against
// an asynchronous transport. It watches the source's outbox for Created
// messages and pays them through, retrying transient network failures
// with exponential backoff.
package relayer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/cache"
	"github.com/luxfi/gateway/utils"
)

const (
	DefaultInterval       = 5 * time.Second
	DefaultAttemptTimeout = 30 * time.Second

	// Messages that exhausted their retries sit out later passes until
	// enough new failures push them out of the set.
	failedSetCapacity = 1024
)

// Relayer finalizes pending messages on behalf of their senders using a
// fixed set of finalize parameters.
type Relayer struct {
	log            log.Logger
	source         *gateway.Source
	params         gateway.FinalizeParams
	interval       time.Duration
	attemptTimeout time.Duration
	failed         *cache.FIFOSet[ids.ID]
}

// Config configures a relayer.
type Config struct {
	Log            log.Logger
	Source         *gateway.Source
	Params         gateway.FinalizeParams
	Interval       time.Duration
	AttemptTimeout time.Duration
}

func New(cfg Config) *Relayer {
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout == 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Relayer{
		log:            cfg.Log,
		source:         cfg.Source,
		params:         cfg.Params,
		interval:       interval,
		attemptTimeout: attemptTimeout,
		failed:         cache.NewFIFOSet[ids.ID](failedSetCapacity),
	}
}

// Run pumps pending messages until the context is canceled.
func (r *Relayer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick finalizes every currently pending message once, with backoff
// inside each attempt. It returns the number of messages finalized.
func (r *Relayer) Tick(ctx context.Context) int {
	finalized := 0
	for _, id := range r.source.PendingMessages() {
		if r.failed.Contains(id) {
			continue
		}

		err := utils.WithRetriesTimeout(r.log, func() error {
			err := r.source.Finalize(ctx, id, r.params)
			// Gateway-level rejections will not heal with time; only
			// network failures are worth the backoff.
			if errors.Is(err, gateway.ErrCannotFinalize) || errors.Is(err, gateway.ErrUnregisteredRoute) {
				return backoff.Permanent(err)
			}
			return err
		}, r.attemptTimeout)
		if err != nil {
			r.log.Error("failed to finalize message",
				log.Stringer("id", id),
				log.Err(err),
			)
			r.failed.Add(id)
			continue
		}
		finalized++
	}
	if finalized > 0 {
		r.log.Info("finalized pending messages", log.Int("count", finalized))
	}
	return finalized
}

// Forget clears a message from the failed set so the next pass retries
// it.
func (r *Relayer) Forget(id ids.ID) {
	r.failed.Remove(id)
}
