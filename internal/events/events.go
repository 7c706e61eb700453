// Package events publishes workspace and rewrite-job updates to a message
// broker so other services can follow along.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajarshidattapy/resumeness/internal/config"
	"github.com/rajarshidattapy/resumeness/internal/state"
)

const (
	TypeWorkspacePrefix = "workspace."
	TypeRewriteStatus   = "rewrite.status"
)

// Event is the JSON envelope sent to every backend.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(typ, subject string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Subject:   subject,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is the event family followed by the subject, e.g.
// "workspace.default" or "rewrite.<job id>".
func (e Event) RoutingKey() string {
	family, _, _ := strings.Cut(e.Type, ".")
	return family + "." + e.Subject
}

func (e Event) encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return body, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of every recorded event, in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// New returns the publisher selected by cfg.EventsBackend.
func New(cfg config.Config) (Publisher, error) {
	switch cfg.EventsBackend {
	case "amqp":
		return NewAMQPPublisher(cfg.RabbitMQURL, cfg.AMQPExchange)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "none", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

// WorkspaceListener adapts pub to state.Options.OnChange. Publish failures
// are logged and otherwise ignored.
func WorkspaceListener(pub Publisher, workspaceID string, log *slog.Logger) func(context.Context, state.Change) {
	return func(ctx context.Context, c state.Change) {
		e := NewEvent(TypeWorkspacePrefix+c.Kind, workspaceID, c)
		if err := pub.Publish(context.WithoutCancel(ctx), e); err != nil {
			log.Warn("publish workspace event failed", "type", e.Type, "error", err)
		}
	}
}
