package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"deskly/internal/availability"
	bookingserrors "deskly/internal/bookings/errors"
	"deskly/internal/bookings/validator"
	userserrors "deskly/internal/users/errors"
	workspaceserrors "deskly/internal/workspaces/errors"
	"deskly/pkg/config"
	mongotx "deskly/pkg/db/mongo"
	apperrors "deskly/pkg/errors"
	"deskly/pkg/logger"
	"deskly/pkg/model"
)

const (
	testWorkspaceID = "507f1f77bcf86cd799439011"
	testBookingID   = "507f1f77bcf86cd799439012"
	testCustomerID  = "customer-1"
	testAdminID     = "507f1f77bcf86cd799439099"
)

type mockBookingRepo struct {
	mu            sync.Mutex
	bookings      map[string]*model.Booking
	createFunc    func(ctx context.Context, booking *model.Booking) error
	findByIDFunc  func(ctx context.Context, id string) (*model.Booking, error)
	confirmedFunc func(ctx context.Context, workspaceID string) ([]*model.Booking, error)
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.ID == "" {
		booking.ID = testBookingID
	}
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *mockBookingRepo) FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	bookings, _ := m.FindByCustomer(ctx, customerID, 0, 0)
	return int64(len(bookings)), nil
}

func (m *mockBookingRepo) FindConfirmedByWorkspace(ctx context.Context, workspaceID string) ([]*model.Booking, error) {
	if m.confirmedFunc != nil {
		return m.confirmedFunc(ctx, workspaceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.WorkspaceID == workspaceID && b.Status == model.BookingStatusConfirmed {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	booking.Status = status
	return nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

// mockLockRepo serializes callers the way the advisory lock collection
// does: a second Create while held reports ErrLockHeld.
type mockLockRepo struct {
	mu         sync.Mutex
	held       map[string]bool
	createFunc func(ctx context.Context, workspaceID string) error
}

func newMockLockRepo() *mockLockRepo {
	return &mockLockRepo{held: make(map[string]bool)}
}

func (m *mockLockRepo) Create(ctx context.Context, workspaceID string) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, workspaceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[workspaceID] {
		return bookingserrors.ErrLockHeld
	}
	m.held[workspaceID] = true
	return nil
}

func (m *mockLockRepo) Delete(ctx context.Context, workspaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, workspaceID)
	return nil
}

func (m *mockLockRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type mockWorkspaceRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Workspace, error)
}

func (m *mockWorkspaceRepo) Create(ctx context.Context, workspace *model.Workspace) error {
	return nil
}

func (m *mockWorkspaceRepo) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Workspace{ID: id, Name: "Desk A", Capacity: 1, PricePerHour: 10, Active: true}, nil
}

func (m *mockWorkspaceRepo) FindAllActive(ctx context.Context, limit int, offset int64) ([]*model.Workspace, error) {
	return nil, nil
}

func (m *mockWorkspaceRepo) CountActive(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockWorkspaceRepo) Update(ctx context.Context, id string, workspace *model.Workspace) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockWorkspaceRepo) Deactivate(ctx context.Context, id string) error {
	return nil
}

type mockUserRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

type mockPublisher struct {
	mu        sync.Mutex
	created   []*model.Booking
	cancelled []*model.Booking
}

func (m *mockPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, booking)
	return nil
}

func (m *mockPublisher) BookingCancelled(ctx context.Context, booking *model.Booking, cancelledBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, booking)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		WorkspaceLockTTL:   500 * time.Millisecond,
		WorkspaceLockWait:  100 * time.Millisecond,
		WorkspaceLockRetry: 10 * time.Millisecond,
		MinBookingDuration: time.Hour,
		MaxBookingDuration: 8 * time.Hour,
		WriteTimeout:       time.Second,
		Log:                logger.New(logger.Config{Output: io.Discard}),
	}
}

type fixture struct {
	bookings   *mockBookingRepo
	locks      *mockLockRepo
	workspaces *mockWorkspaceRepo
	users      *mockUserRepo
	publisher  *mockPublisher
	service    BookingService
}

func newFixture() *fixture {
	cfg := testConfig()
	f := &fixture{
		bookings:   newMockBookingRepo(),
		locks:      newMockLockRepo(),
		workspaces: &mockWorkspaceRepo{},
		users:      &mockUserRepo{},
		publisher:  &mockPublisher{},
	}
	f.service = NewBookingService(
		f.bookings,
		f.locks,
		f.workspaces,
		f.users,
		availability.NewIntervalEngine(f.workspaces, f.bookings),
		validator.NewBookingValidator(cfg, cfg.Log),
		f.publisher,
		cfg,
	)
	return f
}

func futureSlot(startHour, endHour int) (time.Time, time.Time) {
	day := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	return day.Add(time.Duration(startHour) * time.Hour), day.Add(time.Duration(endHour) * time.Hour)
}

func request(startHour, endHour int) *model.BookingRequest {
	start, end := futureSlot(startHour, endHour)
	return &model.BookingRequest{WorkspaceID: testWorkspaceID, StartTime: start, EndTime: end}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture()

	booking, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if booking.Status != model.BookingStatusConfirmed {
		t.Errorf("status = %s, want %s", booking.Status, model.BookingStatusConfirmed)
	}
	if booking.TotalPrice != 20.00 {
		t.Errorf("total price = %.2f, want 20.00", booking.TotalPrice)
	}
	if len(f.publisher.created) != 1 {
		t.Errorf("created events = %d, want 1", len(f.publisher.created))
	}
	if len(f.locks.held) != 0 {
		t.Errorf("lock still held after create")
	}
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture()

	if _, err := f.service.Create(context.Background(), testCustomerID, request(9, 11)); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := f.service.Create(context.Background(), "customer-2", request(10, 12))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("overlapping Create() error = %v, want conflict", err)
	}

	// Adjacent interval shares only the boundary instant and succeeds.
	if _, err := f.service.Create(context.Background(), "customer-2", request(11, 13)); err != nil {
		t.Errorf("adjacent Create() error = %v", err)
	}
}

func TestCreateBookingCancelledSlotIsFree(t *testing.T) {
	f := newFixture()

	booking, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.service.Cancel(context.Background(), booking.ID, testCustomerID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if _, err := f.service.Create(context.Background(), "customer-2", request(9, 11)); err != nil {
		t.Errorf("Create() on cancelled slot error = %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture()
	day := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)

	tests := []struct {
		name string
		req  *model.BookingRequest
	}{
		{"end before start", &model.BookingRequest{
			WorkspaceID: testWorkspaceID,
			StartTime:   day.Add(11 * time.Hour),
			EndTime:     day.Add(9 * time.Hour),
		}},
		{"zero duration", &model.BookingRequest{
			WorkspaceID: testWorkspaceID,
			StartTime:   day.Add(9 * time.Hour),
			EndTime:     day.Add(9 * time.Hour),
		}},
		{"past start date", &model.BookingRequest{
			WorkspaceID: testWorkspaceID,
			StartTime:   time.Now().UTC().AddDate(0, 0, -2),
			EndTime:     time.Now().UTC().AddDate(0, 0, -2).Add(2 * time.Hour),
		}},
		{"below minimum duration", &model.BookingRequest{
			WorkspaceID: testWorkspaceID,
			StartTime:   day.Add(9 * time.Hour),
			EndTime:     day.Add(9*time.Hour + 30*time.Minute),
		}},
		{"above maximum duration", &model.BookingRequest{
			WorkspaceID: testWorkspaceID,
			StartTime:   day.Add(9 * time.Hour),
			EndTime:     day.Add(20 * time.Hour),
		}},
		{"missing workspace id", &model.BookingRequest{
			StartTime: day.Add(9 * time.Hour),
			EndTime:   day.Add(11 * time.Hour),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), testCustomerID, tt.req)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestCreateBookingWorkspaceNotFound(t *testing.T) {
	f := newFixture()
	f.workspaces.findByIDFunc = func(ctx context.Context, id string) (*model.Workspace, error) {
		return nil, workspaceserrors.ErrNotFound
	}

	_, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Create() error = %v, want not found", err)
	}
}

func TestCreateBookingInactiveWorkspace(t *testing.T) {
	f := newFixture()
	f.workspaces.findByIDFunc = func(ctx context.Context, id string) (*model.Workspace, error) {
		return &model.Workspace{ID: id, Name: "Desk A", Capacity: 1, Active: false}, nil
	}

	_, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Create() error = %v, want not found", err)
	}
}

func TestCreateBookingMissingCustomer(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), "", request(9, 11))
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("Create() error = %v, want unauthorized", err)
	}
}

func TestCreateBookingBusyWhenLockStuck(t *testing.T) {
	f := newFixture()
	f.locks.createFunc = func(ctx context.Context, workspaceID string) error {
		return bookingserrors.ErrLockHeld
	}

	_, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if !apperrors.HasCode(err, apperrors.CodeBusy) {
		t.Fatalf("Create() error = %v, want busy", err)
	}

	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusServiceUnavailable {
		t.Errorf("busy status = %d, want %d", appErr.StatusCode(), http.StatusServiceUnavailable)
	}
}

// Two concurrent requests for the same interval must produce exactly one
// booking; the loser gets either Conflict (lost the race) or Busy (lock
// wait exhausted).
func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	f := newFixture()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.Create(context.Background(), testCustomerID, request(9, 11))
		}(i)
	}
	wg.Wait()

	var winners, losers int
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case apperrors.HasCode(err, apperrors.CodeConflict), apperrors.HasCode(err, apperrors.CodeBusy):
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Errorf("winners = %d, losers = %d, want exactly one of each", winners, losers)
	}

	confirmed, _ := f.bookings.FindConfirmedByWorkspace(context.Background(), testWorkspaceID)
	if len(confirmed) != 1 {
		t.Errorf("confirmed bookings = %d, want 1", len(confirmed))
	}
}

func TestCancelBookingByOwner(t *testing.T) {
	f := newFixture()
	booking, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cancelled, err := f.service.Cancel(context.Background(), booking.ID, testCustomerID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if !cancelled {
		t.Error("Cancel() = false, want true")
	}
	if len(f.publisher.cancelled) != 1 {
		t.Errorf("cancelled events = %d, want 1", len(f.publisher.cancelled))
	}

	stored, err := f.service.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != model.BookingStatusCancelled {
		t.Errorf("status = %s, want %s", stored.Status, model.BookingStatusCancelled)
	}
}

func TestCancelBookingIdempotent(t *testing.T) {
	f := newFixture()
	booking, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := f.service.Cancel(context.Background(), booking.ID, testCustomerID); err != nil {
		t.Fatalf("first Cancel() error = %v", err)
	}

	cancelled, err := f.service.Cancel(context.Background(), booking.ID, testCustomerID)
	if err != nil {
		t.Fatalf("second Cancel() error = %v", err)
	}
	if cancelled {
		t.Error("second Cancel() = true, want false")
	}
	if len(f.publisher.cancelled) != 1 {
		t.Errorf("cancelled events = %d, want 1", len(f.publisher.cancelled))
	}
}

func TestCancelBookingByAdmin(t *testing.T) {
	f := newFixture()
	f.users.findByIDFunc = func(ctx context.Context, id string) (*model.User, error) {
		if id == testAdminID {
			return &model.User{ID: id, Name: "Ops Admin", Role: model.RoleAdmin}, nil
		}
		return nil, userserrors.ErrNotFound
	}

	booking, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cancelled, err := f.service.Cancel(context.Background(), booking.ID, testAdminID)
	if err != nil {
		t.Fatalf("admin Cancel() error = %v", err)
	}
	if !cancelled {
		t.Error("admin Cancel() = false, want true")
	}
}

func TestCancelBookingUnauthorized(t *testing.T) {
	f := newFixture()
	f.users.findByIDFunc = func(ctx context.Context, id string) (*model.User, error) {
		return &model.User{ID: id, Name: "Other Customer", Role: model.RoleCustomer}, nil
	}

	booking, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = f.service.Cancel(context.Background(), booking.ID, "customer-2")
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("Cancel() error = %v, want unauthorized", err)
	}

	stored, _ := f.service.GetByID(context.Background(), booking.ID)
	if stored.Status != model.BookingStatusConfirmed {
		t.Errorf("status = %s, want still confirmed", stored.Status)
	}
}

func TestCancelBookingNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.Cancel(context.Background(), testBookingID, testCustomerID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Cancel() error = %v, want not found", err)
	}
}

func TestGetByCustomer(t *testing.T) {
	f := newFixture()
	if _, err := f.service.Create(context.Background(), testCustomerID, request(9, 11)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bookings, total, err := f.service.GetByCustomer(context.Background(), testCustomerID, 10, 0)
	if err != nil {
		t.Fatalf("GetByCustomer() error = %v", err)
	}
	if total != 1 || len(bookings) != 1 {
		t.Errorf("GetByCustomer() = %d bookings, total %d, want 1/1", len(bookings), total)
	}

	bookings, total, err = f.service.GetByCustomer(context.Background(), "customer-nobody", 10, 0)
	if err != nil {
		t.Fatalf("GetByCustomer() error = %v", err)
	}
	if total != 0 || len(bookings) != 0 {
		t.Errorf("GetByCustomer() = %d bookings, total %d, want 0/0", len(bookings), total)
	}
}

func TestCreateBookingStorageFailure(t *testing.T) {
	f := newFixture()
	f.bookings.createFunc = func(ctx context.Context, booking *model.Booking) error {
		return errors.New("write concern error")
	}

	_, err := f.service.Create(context.Background(), testCustomerID, request(9, 11))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("Create() error = %v, want internal", err)
	}
	if len(f.locks.held) != 0 {
		t.Errorf("lock still held after failed create")
	}
}
