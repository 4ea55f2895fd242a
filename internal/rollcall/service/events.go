package service

import (
	"context"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// EventPublisher fans attendance decisions out to live dashboards.
type EventPublisher interface {
	PublishAttendance(ctx context.Context, ev types.AttendanceEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishAttendance(context.Context, types.AttendanceEvent) error { return nil }
