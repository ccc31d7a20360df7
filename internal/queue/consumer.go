package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Purger drops cached HTTP responses. The Redis cache middleware implements it.
type Purger interface {
	Purge(ctx context.Context) error
}

// ConsumerConfig tells the consumer where to read and write.
type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	LogDir   string
}

// Consumer binds a durable queue to every booking and course event. Booking
// events are appended to <LogDir>/booking.log; course events purge the
// response cache so the public schedule never serves a stale week.
type Consumer struct {
	cfg    ConsumerConfig
	purger Purger
	logger *log.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

const seenLimit = 4096

// NewConsumer builds a consumer. purger may be nil.
func NewConsumer(cfg ConsumerConfig, purger Purger, logger *log.Logger) *Consumer {
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if logger == nil {
		logger = log.New("consumer")
	}
	return &Consumer{cfg: cfg, purger: purger, logger: logger, seen: make(map[string]struct{})}
}

// Run dials the broker and consumes until ctx is canceled, reconnecting with
// exponential backoff when the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			c.logger.Warnf("event-consumer: dial failed: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warnf("event-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warnf("event-consumer: set QoS failed: %v", err)
	}
	if err := ch.ExchangeDeclare(c.cfg.Exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, key := range []string{"booking.*", "course.*"} {
		if err := ch.QueueBind(c.cfg.Queue, key, c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("queue bind %s: %w", key, err)
		}
	}

	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.RoutingKey, d.Body); err != nil {
				c.logger.Errorf("event-consumer: handle %s failed: %v", d.RoutingKey, err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle processes one message. Redelivered events with a known id are
// acknowledged without side effects.
func (c *Consumer) Handle(ctx context.Context, routingKey string, body []byte) error {
	switch {
	case strings.HasPrefix(routingKey, "booking."):
		var ev BookingEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if c.duplicate(ev.EventID) {
			return nil
		}
		return c.appendBookingLine(ev)
	case strings.HasPrefix(routingKey, "course."):
		var ev CourseEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if c.duplicate(ev.EventID) || c.purger == nil {
			return nil
		}
		if err := c.purger.Purge(ctx); err != nil {
			return fmt.Errorf("purge cache: %w", err)
		}
		c.logger.Infof("event-consumer: cache purged after %s course_id=%d", ev.Kind, ev.CourseID)
		return nil
	}
	return fmt.Errorf("unknown routing key %q", routingKey)
}

func (c *Consumer) duplicate(id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[id]; ok {
		return true
	}
	if len(c.seen) >= seenLimit {
		c.seen = make(map[string]struct{})
	}
	c.seen[id] = struct{}{}
	return false
}

func (c *Consumer) appendBookingLine(ev BookingEvent) error {
	if err := os.MkdirAll(c.cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join(c.cfg.LogDir, "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	verb := "Booking confirmed"
	if ev.Kind == KeyBookingCanceled {
		verb = "Booking canceled"
	}
	line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | course_id=%d | course=%q | location=%q | date=%s | slot=%s\n",
		ev.OccurredAt, verb, ev.BookingID, ev.UserID, ev.CourseID, ev.CourseName, ev.Location, ev.CourseDate, ev.TimeSlot)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
