package googleservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DATE_LAYOUT = "2006-01-02"

// Event is a calendar entry. Without start/end times it is an all-day event
// spanning StartDate to EndDate inclusive.
type Event struct {
	ID          string
	Summary     string
	Description string
	StartDate   string
	EndDate     string
	StartTime   string
	EndTime     string
}

type CalendarAPI interface {
	// UpsertEvent updates the event with event.ID, or creates it when it has no ID or no
	// longer exists, and returns the event ID.
	UpsertEvent(ctx context.Context, event Event) (string, error)

	// DeleteEvent deletes the event; an already deleted event is not an error.
	DeleteEvent(ctx context.Context, eventID string) error
}

type GCalendarAPI struct {
	service    *calendar.Service
	calendarID string
	timeZone   string
}

func NewGoogleCalendarAPI(ctx context.Context, credentialsFilePath, calendarID, timeZone string) (*GCalendarAPI, error) {
	opts := []option.ClientOption{option.WithScopes(calendar.CalendarEventsScope)}
	if credentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFilePath))
	}

	calendarService, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %v", err)
	}

	return &GCalendarAPI{service: calendarService, calendarID: calendarID, timeZone: timeZone}, nil
}

func (gcalAPI GCalendarAPI) UpsertEvent(ctx context.Context, event Event) (string, error) {
	calEvent, err := toCalendarEvent(event, gcalAPI.timeZone)
	if err != nil {
		return "", err
	}

	if event.ID != "" {
		updated, err := gcalAPI.service.Events.Update(gcalAPI.calendarID, event.ID, calEvent).Context(ctx).Do()
		if err == nil {
			return updated.Id, nil
		}
		if !isGone(err) {
			return "", fmt.Errorf("unable to update event %v: %v", event.ID, err)
		}
	}

	created, err := gcalAPI.service.Events.Insert(gcalAPI.calendarID, calEvent).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create event: %v", err)
	}

	return created.Id, nil
}

func (gcalAPI GCalendarAPI) DeleteEvent(ctx context.Context, eventID string) error {
	err := gcalAPI.service.Events.Delete(gcalAPI.calendarID, eventID).Context(ctx).Do()
	if err != nil && !isGone(err) {
		return fmt.Errorf("unable to delete event %v: %v", eventID, err)
	}

	return nil
}

func toCalendarEvent(event Event, timeZone string) (*calendar.Event, error) {
	start, err := time.Parse(DATE_LAYOUT, event.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q", event.StartDate)
	}

	end, err := time.Parse(DATE_LAYOUT, event.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q", event.EndDate)
	}

	calEvent := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Reminders: &calendar.EventReminders{
			Overrides: []*calendar.EventReminder{
				{
					Method:  "popup",
					Minutes: 24 * 60,
				},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	if event.StartTime == "" || event.EndTime == "" {
		// All-day events use an exclusive end date.
		calEvent.Start = &calendar.EventDateTime{Date: start.Format(DATE_LAYOUT)}
		calEvent.End = &calendar.EventDateTime{Date: end.AddDate(0, 0, 1).Format(DATE_LAYOUT)}
		return calEvent, nil
	}

	calEvent.Start = &calendar.EventDateTime{
		DateTime: fmt.Sprintf("%sT%s:00", event.StartDate, event.StartTime),
		TimeZone: timeZone,
	}
	calEvent.End = &calendar.EventDateTime{
		DateTime: fmt.Sprintf("%sT%s:00", event.EndDate, event.EndTime),
		TimeZone: timeZone,
	}
	return calEvent, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
