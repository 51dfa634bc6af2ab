package client

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/instinct/askgpt/internal/config"
	"github.com/instinct/askgpt/internal/errors"
)

// RetryPolicy shapes the readiness probe that follows a responder launch.
type RetryPolicy struct {
	// Timeout bounds the whole probe.
	Timeout time.Duration

	// InitialBackoff is the delay after the first failed attempt. It doubles
	// after every further failure up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// PolicyFromOptions derives the retry policy from options.
func PolicyFromOptions(options *config.Options) RetryPolicy {
	options = options.WithDefaults()

	return RetryPolicy{
		Timeout:        options.ReadyTimeout,
		InitialBackoff: options.InitialBackoff,
		MaxBackoff:     options.MaxBackoff,
	}
}

// ConnectWithRetry dials the responder until it accepts the connection.
//
// Only ConnectionError is retried. When the policy timeout elapses the last
// ConnectionError is returned with ErrResponderNotReady in its chain; when
// the caller's context ends first its error is in the chain instead. Any
// other error (for example InvalidStateError) is returned immediately.
func (c *Client) ConnectWithRetry(ctx context.Context, policy RetryPolicy) error {
	probeCtx := ctx

	if policy.Timeout > 0 {
		var cancel context.CancelFunc

		probeCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	backoff := policy.InitialBackoff
	attempts := 0

	for {
		attempts++

		err := c.Connect(probeCtx)
		if err == nil {
			if attempts > 1 {
				c.log.Info("Responder ready", "attempts", attempts)
			}

			return nil
		}

		connErr, ok := stderrors.AsType[*errors.ConnectionError](err)
		if !ok {
			return err
		}

		c.log.Debug("Responder not ready yet", "attempt", attempts, "backoff", backoff, "error", connErr.Err)

		timer := time.NewTimer(backoff)

		select {
		case <-timer.C:
		case <-probeCtx.Done():
			timer.Stop()

			cause := errors.ErrResponderNotReady
			if ctx.Err() != nil {
				cause = ctx.Err()
			}

			c.log.Error("Gave up connecting to responder", "attempts", attempts, "error", connErr.Err)

			return &errors.ConnectionError{
				Addr:     c.addr,
				Attempts: attempts,
				Err:      stderrors.Join(cause, connErr.Err),
			}
		}

		backoff = min(backoff*2, policy.MaxBackoff)
		if backoff <= 0 {
			backoff = config.DefaultInitialBackoff
		}
	}
}
