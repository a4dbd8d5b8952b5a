package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/baechuer/real-time-ressys/services/admin-console/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionToggled       Action = "toggled"
	ActionPasswordReset Action = "password_reset"
)

// Entry is one successful admin mutation.
type Entry struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"` // "user" | "todo"
	EntityID  string    `json:"entity_id,omitempty"`
	Action    Action    `json:"action"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher ships audit entries somewhere durable.
type Publisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, string, []byte) error { return nil }

// Recorder logs every mutation and forwards it to the publisher.
// Publish failures are logged, never returned: the mutation already happened.
type Recorder struct {
	log zerolog.Logger
	pub Publisher
	now func() time.Time
}

func NewRecorder(log zerolog.Logger, pub Publisher) *Recorder {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Recorder{
		log: log.With().Bool("audit", true).Logger(),
		pub: pub,
		now: time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, entity, entityID string, action Action) {
	e := Entry{
		ID:        uuid.NewString(),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		RequestID: middleware.GetRequestID(ctx),
		At:        r.now().UTC(),
	}

	r.log.Info().
		Str("action", string(e.Action)).
		Str("entity", e.Entity).
		Str("entity_id", e.EntityID).
		Str("request_id", e.RequestID).
		Msg("admin_mutation")

	body, err := json.Marshal(e)
	if err != nil {
		r.log.Error().Err(err).Msg("audit_marshal_failed")
		return
	}
	if err := r.pub.PublishEvent(ctx, RoutingKey(e), e.ID, body); err != nil {
		r.log.Warn().Err(err).Str("message_id", e.ID).Msg("audit_publish_failed")
	}
}

// RoutingKey is "admin.<entity>.<action>", e.g. admin.todo.deleted.
func RoutingKey(e Entry) string {
	return "admin." + e.Entity + "." + string(e.Action)
}
