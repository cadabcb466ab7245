// Package audit keeps the trail of changes made through the API: who did what to which
// record, from where.
package audit

import (
	"context"
	"sort"
	"time"

	"gdp/internal/platform/store"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Event struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	ActorName  string    `json:"actorName"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId,omitempty"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	RequestID  string    `json:"requestId"`
	IP         string    `json:"ip"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

func (f Filter) matches(e Event) bool {
	return (f.Action == "" || e.Action == f.Action) &&
		(f.EntityType == "" || e.EntityType == f.EntityType) &&
		(f.ActorUser == "" || e.ActorID == f.ActorUser || e.ActorName == f.ActorUser)
}

type Service struct {
	events *store.Collection[Event]
	now    func() time.Time
}

func New(repo store.Repository) *Service {
	return &Service{
		events: store.NewCollection(repo, store.AuditEvents, func(e *Event) *string { return &e.ID }),
		now:    time.Now,
	}
}

func (s *Service) Record(ctx context.Context, evt Event) error {
	evt.ID = ""
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = s.now().UTC()
	}
	_, err := s.events.Create(ctx, evt)
	return err
}

// List returns matching events, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Event, error) {
	all, err := s.events.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(all))
	for _, e := range all {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
