package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/payment"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReservationRepo keeps reservations in memory and applies the same
// guarded transition semantics as the SQL implementation.
type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*entity.Reservation
	now          func() time.Time
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[uuid.UUID]*entity.Reservation),
		now:          time.Now,
	}
}

func (f *fakeReservationRepo) Create(ctx context.Context, reservation *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := *reservation
	f.reservations[reservation.ID] = &snapshot
	return nil
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	snapshot := *res
	return &snapshot, nil
}

func (f *fakeReservationRepo) FindByFilter(ctx context.Context, filter repository.ReservationFilter) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Reservation
	for _, res := range f.reservations {
		if res.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		snapshot := *res
		out = append(out, &snapshot)
	}
	return out, nil
}

func (f *fakeReservationRepo) CountByFilter(ctx context.Context, filter repository.ReservationFilter) (int64, error) {
	items, _ := f.FindByFilter(ctx, filter)
	return int64(len(items)), nil
}

func (f *fakeReservationRepo) Transition(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res, ok := f.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, repository.ErrNotFound)
	}

	source, ok := entity.TransitionSource(target)
	if !ok || res.Status != source {
		return nil, fmt.Errorf("reservation %s is %s: %w", id, res.Status, repository.ErrInvalidTransition)
	}

	res.Status = target
	res.UpdatedAt = f.now()
	snapshot := *res
	return &snapshot, nil
}

type fakeRoomRepo struct {
	rooms map[uuid.UUID]*entity.Room
}

func (f *fakeRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	return f.rooms[id], nil
}

func (f *fakeRoomRepo) FindByHotelID(ctx context.Context, hotelID uuid.UUID) ([]*entity.Room, error) {
	var out []*entity.Room
	for _, room := range f.rooms {
		if room.HotelID == hotelID {
			out = append(out, room)
		}
	}
	return out, nil
}

func testConfig() *utils.Config {
	return &utils.Config{
		Booking: utils.BookingConfig{WindowMinutes: 15},
		Payment: utils.PaymentConfig{
			Methods:   []string{"wechat", "alipay", "card"},
			LatencyMS: 0,
		},
	}
}

type fixture struct {
	service *reservationService
	repo    *fakeReservationRepo
	rooms   *fakeRoomRepo
	userID  uuid.UUID
	hotelID uuid.UUID
	roomID  uuid.UUID
}

func newFixture(t *testing.T, gateway payment.Gateway) *fixture {
	t.Helper()

	reservations := newFakeReservationRepo()
	hotelID := uuid.New()
	roomID := uuid.New()
	rooms := &fakeRoomRepo{rooms: map[uuid.UUID]*entity.Room{
		roomID: {
			Base:     entity.Base{ID: roomID, CreatedAt: time.Now(), UpdatedAt: time.Now()},
			HotelID:  hotelID,
			Name:     "Deluxe King",
			Price:    299,
			Capacity: 2,
		},
	}}

	repo := &repository.Repository{
		Reservation: reservations,
		Room:        rooms,
	}

	svc := NewReservationService(repo, gateway, testConfig(), zap.NewNop()).(*reservationService)

	return &fixture{
		service: svc,
		repo:    reservations,
		rooms:   rooms,
		userID:  uuid.New(),
		hotelID: hotelID,
		roomID:  roomID,
	}
}

func (f *fixture) createRequest() *request.CreateReservationRequest {
	return &request.CreateReservationRequest{
		HotelID:    f.hotelID.String(),
		RoomID:     f.roomID.String(),
		CheckIn:    "2026-03-01",
		CheckOut:   "2026-03-03",
		GuestName:  "Zhang Wei",
		GuestPhone: "13800138000",
		TotalPrice: 598,
	}
}

func TestCreateReservationDefaults(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	resp, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.ReservationStatusPending, resp.Status)
	assert.Equal(t, float64(598), resp.TotalPrice)
	require.NotNil(t, resp.PayBefore, "pending reservation must carry a payment deadline")
	assert.Equal(t, resp.CreatedAt.Add(15*time.Minute), *resp.PayBefore)
	assert.Equal(t, resp.CreatedAt, resp.UpdatedAt)
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	tests := []struct {
		name   string
		mutate func(*request.CreateReservationRequest)
	}{
		{"bad phone", func(r *request.CreateReservationRequest) { r.GuestPhone = "12345" }},
		{"empty guest name", func(r *request.CreateReservationRequest) { r.GuestName = "" }},
		{"negative price", func(r *request.CreateReservationRequest) { r.TotalPrice = -1 }},
		{"checkout before checkin", func(r *request.CreateReservationRequest) {
			r.CheckIn = "2026-03-03"
			r.CheckOut = "2026-03-01"
		}},
		{"checkout equals checkin", func(r *request.CreateReservationRequest) {
			r.CheckOut = r.CheckIn
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.createRequest()
			tt.mutate(req)
			_, err := f.service.CreateReservation(context.Background(), f.userID.String(), req)
			assert.Error(t, err)
		})
	}
}

func TestCreateReservationRoomChecks(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	req := f.createRequest()
	req.RoomID = uuid.NewString()
	_, err := f.service.CreateReservation(context.Background(), f.userID.String(), req)
	assert.ErrorContains(t, err, "not found")

	req = f.createRequest()
	req.HotelID = uuid.NewString()
	_, err = f.service.CreateReservation(context.Background(), f.userID.String(), req)
	assert.ErrorContains(t, err, "not in hotel")
}

func TestPayConfirmsPendingReservation(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(200*time.Millisecond))

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	paid, err := f.service.Pay(context.Background(), f.userID.String(), created.ID, "wechat")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, paid.Status)
	assert.Nil(t, paid.PayBefore, "confirmed reservation has no payment deadline")

	// Paying again must be rejected by the transition guard.
	_, err = f.service.Pay(context.Background(), f.userID.String(), created.ID, "wechat")
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestPayAfterWindowExpiresReservation(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	// Move the service clock 16 minutes past creation.
	base := created.CreatedAt
	f.service.now = func() time.Time { return base.Add(16 * time.Minute) }
	f.repo.now = f.service.now

	_, err = f.service.Pay(context.Background(), f.userID.String(), created.ID, "wechat")
	assert.ErrorIs(t, err, ErrReservationExpired)

	stored, err := f.service.GetReservation(context.Background(), f.userID.String(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, stored.Status)
}

func TestPayDeadlineBoundary(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	// One second before the deadline is still payable.
	base := created.CreatedAt
	f.service.now = func() time.Time { return base.Add(15*time.Minute - time.Second) }

	paid, err := f.service.Pay(context.Background(), f.userID.String(), created.ID, "alipay")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, paid.Status)

	// At the deadline itself the window has lapsed.
	second, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	base = second.CreatedAt
	f.service.now = func() time.Time { return base.Add(15 * time.Minute) }

	_, err = f.service.Pay(context.Background(), f.userID.String(), second.ID, "alipay")
	assert.ErrorIs(t, err, ErrReservationExpired)
}

func TestPayUnknownMethod(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	_, err = f.service.Pay(context.Background(), f.userID.String(), created.ID, "cash")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)

	stored, err := f.service.GetReservation(context.Background(), f.userID.String(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusPending, stored.Status)
}

func TestPayDeclinedKeepsPending(t *testing.T) {
	f := newFixture(t, &payment.Simulator{Decline: true})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	_, err = f.service.Pay(context.Background(), f.userID.String(), created.ID, "card")
	assert.ErrorIs(t, err, payment.ErrDeclined)

	stored, err := f.service.GetReservation(context.Background(), f.userID.String(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusPending, stored.Status)
	assert.NotNil(t, stored.PayBefore)

	// The failed attempt must not have moved the deadline.
	assert.Equal(t, created.PayBefore.Unix(), stored.PayBefore.Unix())
}

func TestCancelIdempotentSemantics(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	cancelled, err := f.service.CancelReservation(context.Background(), f.userID.String(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, cancelled.Status)

	// A second cancel hits the guard; the row stays untouched.
	_, err = f.service.CancelReservation(context.Background(), f.userID.String(), created.ID)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	stored, err := f.service.GetReservation(context.Background(), f.userID.String(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, cancelled.UpdatedAt, stored.UpdatedAt)
}

func TestTerminalStatusesImmutable(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	_, err = f.service.Pay(context.Background(), f.userID.String(), created.ID, "wechat")
	require.NoError(t, err)

	completed, err := f.service.Transition(context.Background(), f.userID.String(), created.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCompleted, completed.Status)

	for _, target := range []string{"pending", "confirmed", "cancelled"} {
		_, err := f.service.Transition(context.Background(), f.userID.String(), created.ID, target)
		assert.Error(t, err, "completed reservation must reject transition to %s", target)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	_, err = f.service.Transition(context.Background(), f.userID.String(), created.ID, "expired")
	assert.ErrorContains(t, err, "not a reservation status")

	_, err = f.service.Transition(context.Background(), f.userID.String(), created.ID, "Pending")
	assert.ErrorContains(t, err, "not a reservation status")
}

func TestOwnerScoping(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	created, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	otherUser := uuid.NewString()

	_, err = f.service.GetReservation(context.Background(), otherUser, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.service.Pay(context.Background(), otherUser, created.ID, "wechat")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.service.CancelReservation(context.Background(), otherUser, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetReservationNotFound(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	_, err := f.service.GetReservation(context.Background(), f.userID.String(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListReservationsFiltersByStatus(t *testing.T) {
	f := newFixture(t, &payment.Simulator{})

	first, err := f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)
	_, err = f.service.CreateReservation(context.Background(), f.userID.String(), f.createRequest())
	require.NoError(t, err)

	_, err = f.service.Pay(context.Background(), f.userID.String(), first.ID, "wechat")
	require.NoError(t, err)

	req := &request.ListReservationsRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PageSize: 10},
		Status:           "pending",
	}
	page, err := f.service.ListReservations(context.Background(), f.userID.String(), req)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, entity.ReservationStatusPending, page.Data[0].Status)
	assert.Equal(t, int64(1), page.Pagination.Total)

	req.Status = ""
	page, err = f.service.ListReservations(context.Background(), f.userID.String(), req)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
}
