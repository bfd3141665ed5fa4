package persistence

import (
	"context"
	"time"

	"github.com/asaidimu/go-umbra/core/schema"
)

// EventType defines the possible event types for collection operations.
type EventType string

const (
	DocumentSaveStart      EventType = "document:save:start"
	DocumentSaveSuccess    EventType = "document:save:success"
	DocumentSaveFailed     EventType = "document:save:failed"
	DocumentFindStart      EventType = "document:find:start"
	DocumentFindSuccess    EventType = "document:find:success"
	DocumentFindFailed     EventType = "document:find:failed"
	SubscriptionRegister   EventType = "subscription:register"
	SubscriptionUnregister EventType = "subscription:unregister"
)

// Event represents a collection operation's lifecycle notification. Input,
// Output, and Query are kept as any so subscribers can inspect whatever the
// operation carried.
type Event struct {
	Type       EventType      `json:"type"`
	Timestamp  int64          `json:"timestamp"` // Unix milliseconds
	Operation  string         `json:"operation"`
	Collection *string        `json:"collection,omitempty"`
	Input      any            `json:"input,omitempty"`
	Output     any            `json:"output,omitempty"`
	Error      *string        `json:"error,omitempty"`
	Issues     []schema.Issue `json:"issues,omitempty"`
	Query      any            `json:"query,omitempty"`
	Duration   *int64         `json:"duration,omitempty"` // milliseconds
}

// RegisterSubscriptionOptions configures a subscription to collection events.
type RegisterSubscriptionOptions struct {
	Event       EventType
	Callback    func(ctx context.Context, event Event) error
	Label       *string
	Description *string
}

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	ID          string
	Event       EventType
	Unsubscribe func()
	Label       *string
	Description *string
}

func createEvent(
	eventType EventType,
	operation string,
	collectionName string,
	input any,
	output any,
	queryParam any,
	err *string,
	issues []schema.Issue,
	startTime time.Time,
) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	return Event{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: &collectionName,
		Input:      input,
		Output:     output,
		Error:      err,
		Issues:     issues,
		Query:      queryParam,
		Duration:   duration,
	}
}
