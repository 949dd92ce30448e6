// Package event carries activity change notifications to kafka and to live websocket streams.
package event

import (
	"context"
	"time"
)

// Type event kind
type Type string

// activity event types
const (
	ActivityCreated Type = "activity.created"
	ActivityUpdated Type = "activity.updated"
	ActivityDeleted Type = "activity.deleted"
)

// ActivityEvent one change of a user's activity log
type ActivityEvent struct {
	Type       Type        `json:"type"`
	UserID     string      `json:"userId"`
	ActivityID string      `json:"activityId"`
	Activity   interface{} `json:"activity"` // nil on delete
	OccurredAt time.Time   `json:"occurredAt"`
}

// Publisher delivers activity events somewhere
type Publisher interface {
	Publish(ctx context.Context, evt *ActivityEvent) error
}
