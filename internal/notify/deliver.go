package notify

import (
	"context"
	"time"

	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds delivery attempts. Delay doubles after each failure up
// to MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy is used when a zero policy is supplied.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	BaseDelay:   2 * time.Second,
	MaxDelay:    time.Minute,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// deliver sends msg, retrying failures per p. It returns the last error once
// attempts are exhausted or ctx is done.
func deliver(ctx context.Context, s Sender, msg Message, p RetryPolicy, m *metrics.Metrics) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = s.Send(ctx, msg); err == nil {
			m.Notification("sent")
			log.Info().
				Str("order_number", msg.OrderNumber).
				Int("attempt", attempt).
				Msg("order confirmation sent")
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}
		m.Notification("retry")
		log.Warn().Err(err).
			Str("order_number", msg.OrderNumber).
			Int("attempt", attempt).
			Msg("order confirmation failed, retrying")

		t := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			m.Notification("failed")
			return ctx.Err()
		case <-t.C:
		}
	}

	m.Notification("failed")
	log.Error().Err(err).
		Str("order_number", msg.OrderNumber).
		Int("attempts", p.MaxAttempts).
		Msg("order confirmation abandoned")
	return err
}
