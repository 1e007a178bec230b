package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/domain/lifecycle"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

const (
	EventCreated    = "created"
	EventUpdated    = "updated"
	EventDeleted    = "deleted"
	EventRolledBack = "rolled_back"
)

// ChangeEvent is the payload published for every committed mutation.
type ChangeEvent struct {
	Type        string                   `json:"type"`
	Phase       lifecycle.Phase          `json:"phase"`
	Application *application.Application `json:"application"`
	At          int64                    `json:"at"`
}

// Sink delivers encoded change events.
type Sink interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

type redisSink struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisSink connects to addr and publishes on channel ("applications" when blank).
func NewRedisSink(ctx context.Context, addr, channel string) (Sink, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "applications"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisSink{rdb: rdb, channel: channel}, nil
}

func (s *redisSink) Publish(ctx context.Context, payload []byte) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis sink not initialized")
	}
	return s.rdb.Publish(ctx, s.channel, payload).Err()
}

func (s *redisSink) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

type EventOptions struct {
	// FailOnError turns a publish failure into a failed mutation (and a rollback).
	FailOnError bool
	Clock       func() time.Time
}

// EventPublisher announces one post phase on a Sink.
type EventPublisher struct {
	log     *logger.Logger
	sink    Sink
	metrics *observability.Metrics
	phase   lifecycle.Phase
	opts    EventOptions
}

// EventListeners returns publishers for POST_CREATE, POST_UPDATE and POST_DELETE.
func EventListeners(log *logger.Logger, sink Sink, metrics *observability.Metrics, opts EventOptions) []lifecycle.Listener[*application.Application] {
	return []lifecycle.Listener[*application.Application]{
		NewEventPublisher(log, sink, metrics, lifecycle.PostCreate, opts),
		NewEventPublisher(log, sink, metrics, lifecycle.PostUpdate, opts),
		NewEventPublisher(log, sink, metrics, lifecycle.PostDelete, opts),
	}
}

func NewEventPublisher(log *logger.Logger, sink Sink, metrics *observability.Metrics, phase lifecycle.Phase, opts EventOptions) *EventPublisher {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &EventPublisher{
		log:     log.With("listener", "events", "phase", string(phase)),
		sink:    sink,
		metrics: metrics,
		phase:   phase,
		opts:    opts,
	}
}

func (p *EventPublisher) Name() string { return "events:" + strings.ToLower(string(p.phase)) }

func (p *EventPublisher) Supports(phase lifecycle.Phase) bool {
	return phase == p.phase && !phase.IsPre()
}

func (p *EventPublisher) Apply(ctx context.Context, original, candidate *application.Application) (*application.Application, error) {
	subject := candidate
	if p.phase == lifecycle.PostDelete && original != nil {
		subject = original
	}
	if err := p.publish(ctx, eventType(p.phase), subject); err != nil {
		if p.opts.FailOnError {
			return nil, err
		}
		p.log.Warn("change event dropped", "application", subject.ID(), "error", err)
	}
	return candidate, nil
}

// Rollback announces that the mutation this publisher reported was undone.
func (p *EventPublisher) Rollback(ctx context.Context, original *application.Application) error {
	return p.publish(ctx, EventRolledBack, original)
}

func (p *EventPublisher) publish(ctx context.Context, typ string, app *application.Application) error {
	raw, err := json.Marshal(ChangeEvent{
		Type:        typ,
		Phase:       p.phase,
		Application: app,
		At:          p.opts.Clock().UnixMilli(),
	})
	if err != nil {
		p.metrics.IncListenerEvent(p.Name(), string(p.phase), false)
		return fmt.Errorf("encode change event: %w", err)
	}
	if p.sink == nil {
		p.metrics.IncListenerEvent(p.Name(), string(p.phase), false)
		return fmt.Errorf("change event sink not configured")
	}
	if err := p.sink.Publish(ctx, raw); err != nil {
		p.metrics.IncListenerEvent(p.Name(), string(p.phase), false)
		return fmt.Errorf("publish change event: %w", err)
	}
	p.metrics.IncListenerEvent(p.Name(), string(p.phase), true)
	return nil
}

func eventType(phase lifecycle.Phase) string {
	switch phase {
	case lifecycle.PostCreate:
		return EventCreated
	case lifecycle.PostUpdate:
		return EventUpdated
	case lifecycle.PostDelete:
		return EventDeleted
	default:
		return strings.ToLower(string(phase))
	}
}
