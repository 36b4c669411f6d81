package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	workspaceserrors "deskly/internal/workspaces/errors"
	"deskly/pkg/model"
)

type mockWorkspaceSource struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Workspace, error)
}

func (m *mockWorkspaceSource) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Workspace{ID: id, Name: "Desk A", Capacity: 1, Active: true}, nil
}

type mockBookingSource struct {
	findConfirmedFunc func(ctx context.Context, workspaceID string) ([]*model.Booking, error)
}

func (m *mockBookingSource) FindConfirmedByWorkspace(ctx context.Context, workspaceID string) ([]*model.Booking, error) {
	if m.findConfirmedFunc != nil {
		return m.findConfirmedFunc(ctx, workspaceID)
	}
	return nil, nil
}

func at(hour int) time.Time {
	return time.Date(2026, 10, 5, hour, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 time.Time
		want                       bool
	}{
		{"fully overlapping", at(9), at(11), at(9), at(11), true},
		{"partial overlap at end", at(9), at(11), at(10), at(12), true},
		{"partial overlap at start", at(10), at(12), at(9), at(11), true},
		{"contained", at(9), at(12), at(10), at(11), true},
		{"touching boundary is free", at(9), at(11), at(11), at(12), false},
		{"touching boundary before", at(9), at(11), at(8), at(9), false},
		{"disjoint", at(9), at(10), at(14), at(15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.start1, tt.end1, tt.start2, tt.end2); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntervalEngine_OccupiedSlot(t *testing.T) {
	bookings := &mockBookingSource{
		findConfirmedFunc: func(ctx context.Context, workspaceID string) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "b1", WorkspaceID: workspaceID, StartTime: at(9), EndTime: at(11), Status: model.BookingStatusConfirmed},
			}, nil
		},
	}
	engine := NewIntervalEngine(&mockWorkspaceSource{}, bookings)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"overlapping request rejected", at(10), at(12), false},
		{"back-to-back after is free", at(11), at(12), true},
		{"back-to-back before is free", at(8), at(9), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.IsAvailable(context.Background(), "ws1", tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAvailable(%v-%v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestIntervalEngine_InactiveWorkspace(t *testing.T) {
	workspaces := &mockWorkspaceSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Workspace, error) {
			return &model.Workspace{ID: id, Name: "Retired room", Capacity: 4, Active: false}, nil
		},
	}
	engine := NewIntervalEngine(workspaces, &mockBookingSource{})

	got, err := engine.IsAvailable(context.Background(), "ws1", at(9), at(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("inactive workspace must never be available, even with zero bookings")
	}
}

func TestIntervalEngine_MissingWorkspace(t *testing.T) {
	workspaces := &mockWorkspaceSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Workspace, error) {
			return nil, workspaceserrors.ErrNotFound
		},
	}
	engine := NewIntervalEngine(workspaces, &mockBookingSource{})

	got, err := engine.IsAvailable(context.Background(), "missing", at(9), at(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("missing workspace must be reported unavailable")
	}
}

func TestIntervalEngine_StorageFailure(t *testing.T) {
	bookings := &mockBookingSource{
		findConfirmedFunc: func(ctx context.Context, workspaceID string) ([]*model.Booking, error) {
			return nil, errors.New("connection reset")
		},
	}
	engine := NewIntervalEngine(&mockWorkspaceSource{}, bookings)

	if _, err := engine.IsAvailable(context.Background(), "ws1", at(9), at(10)); err == nil {
		t.Fatal("expected storage failure to propagate")
	}
}
