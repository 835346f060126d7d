// Package audit publishes recipe composition changes to an event stream.
package audit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	LineAdded    = "recipe.line.added"
	LineUpdated  = "recipe.line.updated"
	LinesUpdated = "recipe.lines.updated"
	LineRemoved  = "recipe.line.removed"
)

// Event describes a committed change to a recipe composition.
type Event struct {
	ID         string
	Type       string
	CustomerID uint
	RecipeID   uint
	LineIDs    []uint
	RequestID  string
	At         time.Time
}

// NewEvent stamps a fresh identifier and timestamp.
func NewEvent(eventType string, customerID, recipeID uint, lineIDs ...uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		RecipeID:   recipeID,
		LineIDs:    lineIDs,
		At:         time.Now().UTC(),
	}
}

// Values flattens the event into stream fields.
func (e Event) Values() map[string]any {
	lines := make([]byte, 0, len(e.LineIDs)*4)
	for i, id := range e.LineIDs {
		if i > 0 {
			lines = append(lines, ',')
		}
		lines = strconv.AppendUint(lines, uint64(id), 10)
	}
	return map[string]any{
		"event_id":    e.ID,
		"type":        e.Type,
		"customer_id": strconv.FormatUint(uint64(e.CustomerID), 10),
		"recipe_id":   strconv.FormatUint(uint64(e.RecipeID), 10),
		"line_ids":    string(lines),
		"request_id":  e.RequestID,
		"at":          e.At.Format(time.RFC3339Nano),
	}
}

// Publisher delivers events. Publishing happens after commit, so a failure
// never undoes the change it describes.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }

// Memory keeps events in process. Useful for tests and the mock server.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
