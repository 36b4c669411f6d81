package availability

import (
	"context"
	"errors"
	"time"

	workspaceserrors "deskly/internal/workspaces/errors"
	apperrors "deskly/pkg/errors"
)

// IntervalEngine is the production engine: a linear scan over the
// workspace's confirmed bookings using half-open interval comparison.
// A single workspace's booking count stays small, so no interval tree is
// needed; swapping one in only requires another Engine implementation.
type IntervalEngine struct {
	workspaces WorkspaceSource
	bookings   BookingSource
}

func NewIntervalEngine(workspaces WorkspaceSource, bookings BookingSource) *IntervalEngine {
	return &IntervalEngine{
		workspaces: workspaces,
		bookings:   bookings,
	}
}

func (e *IntervalEngine) IsAvailable(ctx context.Context, workspaceID string, start, end time.Time) (bool, error) {
	workspace, err := e.workspaces.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspaceserrors.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Internal("Failed to load workspace for availability check", err)
	}

	if !workspace.Active {
		return false, nil
	}

	confirmed, err := e.bookings.FindConfirmedByWorkspace(ctx, workspaceID)
	if err != nil {
		return false, apperrors.Internal("Failed to load bookings for availability check", err)
	}

	for _, b := range confirmed {
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return false, nil
		}
	}

	return true, nil
}
