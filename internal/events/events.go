// Package events publishes unit lifecycle notifications to a message bus.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"bobox/internal/unit"
)

const (
	DefaultSubject = "units.events"

	TypeUnitCreated   = "unit.created"
	TypeStatusChanged = "unit.status_changed"
)

type Event struct {
	Event  string      `json:"event"`
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   unit.Kind   `json:"type"`
	Status unit.Status `json:"status"`
	From   unit.Status `json:"from,omitempty"`
	Time   time.Time   `json:"time"`
}

// Publisher delivers a raw payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

// Nop discards everything. Used when no bus is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }

// Emitter turns unit changes into Events. Publish failures are logged and
// swallowed; the store change they describe has already happened.
type Emitter struct {
	pub     Publisher
	subject string
	log     logrus.FieldLogger
}

func NewEmitter(pub Publisher, subject string, log logrus.FieldLogger) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{pub: pub, subject: subject, log: log}
}

func (e *Emitter) UnitCreated(ctx context.Context, u unit.Unit) {
	e.emit(ctx, Event{
		Event:  TypeUnitCreated,
		ID:     u.ID,
		Name:   u.Name,
		Type:   u.Kind,
		Status: u.Status,
		Time:   u.LastUpdated,
	})
}

func (e *Emitter) StatusChanged(ctx context.Context, tr unit.Transition) {
	e.emit(ctx, Event{
		Event:  TypeStatusChanged,
		ID:     tr.After.ID,
		Name:   tr.After.Name,
		Type:   tr.After.Kind,
		Status: tr.After.Status,
		From:   tr.Before.Status,
		Time:   tr.After.LastUpdated,
	})
}

func (e *Emitter) emit(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		e.log.WithError(err).WithField("event", ev.Event).Error("encode event")
		return
	}
	if err := e.pub.Publish(ctx, e.subject, payload); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"event":   ev.Event,
			"unit_id": ev.ID,
			"subject": e.subject,
		}).Warn("publish failed")
	}
}
