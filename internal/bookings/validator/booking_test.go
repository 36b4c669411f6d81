package validator

import (
	"io"
	"testing"
	"time"

	"deskly/pkg/config"
	"deskly/pkg/logger"
	"deskly/pkg/model"
)

const testWorkspaceID = "507f1f77bcf86cd799439011"

func newTestValidator(now time.Time) *BookingValidator {
	cfg := &config.Config{
		MinBookingDuration: time.Hour,
		MaxBookingDuration: 8 * time.Hour,
		Log:                logger.New(logger.Config{Output: io.Discard}),
	}
	v := NewBookingValidator(cfg, cfg.Log)
	v.now = func() time.Time { return now }
	return v
}

func TestValidateRequest(t *testing.T) {
	now := time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)
	day := now.Truncate(24 * time.Hour)
	v := newTestValidator(now)

	tests := []struct {
		name    string
		req     *model.BookingRequest
		wantErr bool
	}{
		{
			"valid same-day booking",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(11 * time.Hour)},
			false,
		},
		{
			"valid earlier today",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(6 * time.Hour), EndTime: day.Add(7 * time.Hour)},
			false,
		},
		{
			"exactly minimum duration",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour)},
			false,
		},
		{
			"exactly maximum duration",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(17 * time.Hour)},
			false,
		},
		{
			"end equals start",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(9 * time.Hour)},
			true,
		},
		{
			"end before start",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(11 * time.Hour), EndTime: day.Add(9 * time.Hour)},
			true,
		},
		{
			"start on previous day",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(-15 * time.Hour), EndTime: day.Add(-13 * time.Hour)},
			true,
		},
		{
			"below minimum duration",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(9*time.Hour + 30*time.Minute)},
			true,
		},
		{
			"above maximum duration",
			&model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(18 * time.Hour)},
			true,
		},
		{
			"missing workspace id",
			&model.BookingRequest{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(11 * time.Hour)},
			true,
		},
		{
			"malformed workspace id",
			&model.BookingRequest{WorkspaceID: "not-an-object-id", StartTime: day.Add(9 * time.Hour), EndTime: day.Add(11 * time.Hour)},
			true,
		},
		{
			"missing times",
			&model.BookingRequest{WorkspaceID: testWorkspaceID},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
