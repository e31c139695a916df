package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/letters/internal/config"
	"github.com/iliyamo/letters/internal/jobs"
	"github.com/iliyamo/letters/internal/logging"
)

// HandlerFunc processes one decoded event. A returned error rejects the
// delivery without requeueing it.
type HandlerFunc func(ctx context.Context, ev ArticleEvent) error

var errDeliveriesClosed = errors.New("deliveries channel closed")

// RunConsumer reads article events from the configured queue until the
// returned job is canceled. Broker failures are retried with exponential
// backoff. Without a broker URL the job finishes immediately.
func RunConsumer(cfg config.EventsConfig, handle HandlerFunc) *jobs.Job {
	job := jobs.New("article events consumer")
	log := job.Logger

	if cfg.AMQPURL == "" {
		log.Warn().Msg("No broker URL configured, article events consumer is disabled")
		return job.Finish()
	}

	boff := &backoff.Backoff{
		Min: 1 * time.Second,
		Max: 30 * time.Second,
	}
	go superviseConsumer(job, boff, func(ctx context.Context, consuming func()) error {
		return consumeOnce(ctx, cfg, handle, consuming)
	})
	return job
}

// superviseConsumer calls run until the job is canceled, sleeping per boff
// between attempts. run calls consuming once deliveries flow, which resets
// the backoff.
func superviseConsumer(job *jobs.Job, boff *backoff.Backoff, run func(ctx context.Context, consuming func()) error) {
	log := job.Logger
	defer func() {
		log.Debug().Msg("shut down article events consumer")
		job.Finish()
	}()
	defer logging.LogPanics(&log)

	for {
		select {
		case <-job.Canceled():
			return
		default:
		}

		err := run(job.Ctx, boff.Reset)
		if errors.Is(err, context.Canceled) {
			return
		}
		dur := boff.Duration()
		log.Error().Err(err).Dur("retrying after", dur).Msg("article events consumer stopped")

		timer := time.NewTimer(dur)
		select {
		case <-job.Canceled():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func consumeOnce(ctx context.Context, cfg config.EventsConfig, handle HandlerFunc, consuming func()) error {
	log := logging.ExtractLogger(ctx)

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("failed to set prefetch")
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", cfg.Queue, err)
	}
	log.Info().Str("queue", cfg.Queue).Msg("Consuming article events")
	consuming()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			if err := handleDelivery(ctx, d.Body, handle); err != nil {
				log.Error().Err(err).Str("message_id", d.MessageId).Msg("failed to handle article event")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleDelivery(ctx context.Context, body []byte, handle HandlerFunc) error {
	var ev ArticleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" || ev.ArticleID == 0 {
		return fmt.Errorf("incomplete event %q", ev.ID)
	}
	return handle(ctx, ev)
}

// LogEvent is the default handler: it records the event in the job log.
func LogEvent(ctx context.Context, ev ArticleEvent) error {
	logEvent(logging.ExtractLogger(ctx), ev)
	return nil
}

func logEvent(log *zerolog.Logger, ev ArticleEvent) {
	log.Info().
		Str("event_id", ev.ID).
		Str("type", ev.Type).
		Uint64("article_id", ev.ArticleID).
		Uint64("user_id", ev.UserID).
		Str("title", ev.Title).
		Time("occurred_at", ev.OccurredAt).
		Msg("article event")
}
