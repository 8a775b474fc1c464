package googleservice

import (
	"context"
	"fmt"
	"sync"
)

type GCalendarAPIStub struct {
	mu        sync.Mutex
	Events    map[string]Event
	nextID    int
	UpsertErr error
	DeleteErr error
}

func NewGCalendarAPIStub() *GCalendarAPIStub {
	return &GCalendarAPIStub{Events: map[string]Event{}}
}

func (gcalAPI *GCalendarAPIStub) UpsertEvent(ctx context.Context, event Event) (string, error) {
	if gcalAPI.UpsertErr != nil {
		return "", gcalAPI.UpsertErr
	}

	gcalAPI.mu.Lock()
	defer gcalAPI.mu.Unlock()

	if _, ok := gcalAPI.Events[event.ID]; !ok || event.ID == "" {
		gcalAPI.nextID++
		event.ID = fmt.Sprintf("event-%d", gcalAPI.nextID)
	}
	gcalAPI.Events[event.ID] = event

	return event.ID, nil
}

func (gcalAPI *GCalendarAPIStub) DeleteEvent(ctx context.Context, eventID string) error {
	if gcalAPI.DeleteErr != nil {
		return gcalAPI.DeleteErr
	}

	gcalAPI.mu.Lock()
	defer gcalAPI.mu.Unlock()
	delete(gcalAPI.Events, eventID)

	return nil
}

func (gcalAPI *GCalendarAPIStub) Event(id string) (Event, bool) {
	gcalAPI.mu.Lock()
	defer gcalAPI.mu.Unlock()

	event, ok := gcalAPI.Events[id]
	return event, ok
}
