package availability

import (
	"context"
	"time"

	"deskly/pkg/model"
)

// Engine answers whether a workspace is free for a requested interval.
// Implementations must be evaluated against a consistent snapshot of the
// workspace's confirmed bookings; the booking service guarantees that by
// invoking the engine under the per-workspace lock, inside the same
// transaction that inserts the booking.
type Engine interface {
	IsAvailable(ctx context.Context, workspaceID string, start, end time.Time) (bool, error)
}

// WorkspaceSource is the slice of the workspace repository the engine
// needs.
type WorkspaceSource interface {
	FindByID(ctx context.Context, id string) (*model.Workspace, error)
}

// BookingSource lists the confirmed bookings of one workspace. The store
// indexes bookings by workspace, so this never scans other workspaces.
type BookingSource interface {
	FindConfirmedByWorkspace(ctx context.Context, workspaceID string) ([]*model.Booking, error)
}

// Overlaps reports whether two half-open intervals [start1, end1) and
// [start2, end2) share any instant. A booking ending exactly when another
// starts does not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}
