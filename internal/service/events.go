// Package service implements the course catalog and the booking workflow on
// top of a repository.Store. Every mutation runs in one transaction; domain
// events are published only after the transaction commits.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/queue"
)

// Publisher sends a domain event. *queue.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Logger is the subset of the gommon/echo logger the services use.
type Logger interface {
	Warnf(format string, args ...interface{})
}

const publishTimeout = 3 * time.Second

// notifier publishes best-effort events; a nil publisher disables it.
type notifier struct {
	pub    Publisher
	logger Logger
}

func (n notifier) send(ctx context.Context, key string, event any) {
	if n.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.pub.Publish(ctx, key, event); err != nil && n.logger != nil {
		n.logger.Warnf("publish %s failed: %v", key, err)
	}
}

func (n notifier) course(ctx context.Context, key string, c model.Course, actorID uint64) {
	n.send(ctx, key, queue.NewCourseEvent(key, c, actorID))
}

func (n notifier) booking(ctx context.Context, key string, b model.Booking, c model.Course) {
	n.send(ctx, key, queue.NewBookingEvent(key, b, c))
}
