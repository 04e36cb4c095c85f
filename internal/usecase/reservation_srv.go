package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/internal/payment"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, userID string, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	GetReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error)
	ListReservations(ctx context.Context, userID string, req *request.ListReservationsRequest) (*response.PaginatedResponse[response.ReservationResponse], error)

	// Transition applies a guarded status change; the repository's
	// compare-and-swap decides the winner of concurrent attempts.
	Transition(ctx context.Context, userID string, reservationID string, targetStatus string) (*response.ReservationResponse, error)
	CancelReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error)

	// Pay charges the reservation through the gateway and confirms it. The
	// payment window is re-derived from created_at on every call; a stale
	// client countdown can never make a dead window payable again.
	Pay(ctx context.Context, userID string, reservationID string, method string) (*response.ReservationResponse, error)
}

type reservationService struct {
	repo    *repository.Repository
	gateway payment.Gateway
	config  *utils.Config
	log     *zap.Logger
	now     func() time.Time
}

func NewReservationService(repo *repository.Repository, gateway payment.Gateway, config *utils.Config, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:    repo,
		gateway: gateway,
		config:  config,
		log:     log.With(zap.String("service", "reservation")),
		now:     time.Now,
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, userID string, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// Parse IDs
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	hotelID, err := uuid.Parse(req.HotelID)
	if err != nil {
		return nil, fmt.Errorf("invalid hotel ID format %s: %w", req.HotelID, err)
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room ID format %s: %w", req.RoomID, err)
	}

	// Parse stay dates
	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in date %s: %w", req.CheckIn, err)
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("invalid check-out date %s: %w", req.CheckOut, err)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("validation failed: check_out must be after check_in")
	}

	// Validate the room exists and belongs to the hotel
	room, err := s.repo.Room.FindByID(ctx, roomID)
	if err != nil {
		s.log.Error("Failed to check room", zap.Error(err), zap.String("room_id", req.RoomID))
		return nil, fmt.Errorf("check room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %s not found", req.RoomID)
	}
	if room.HotelID != hotelID {
		return nil, fmt.Errorf("room %s not in hotel %s", req.RoomID, req.HotelID)
	}

	// The total price is computed by the caller (room price x nights + fees);
	// the core treats it as opaque for status purposes.
	now := s.now()
	reservation := &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HotelID:    hotelID,
		RoomID:     roomID,
		UserID:     userUUID,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: req.TotalPrice,
		Status:     entity.ReservationStatusPending,
	}

	if err := s.repo.Reservation.Create(ctx, reservation); err != nil {
		s.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("room_id", req.RoomID),
		)
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.log.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("user_id", userID),
		zap.String("hotel_id", req.HotelID),
		zap.Float64("total_price", req.TotalPrice),
		zap.Time("pay_before", reservation.PaymentDeadline(s.config.Booking.Window())),
	)

	resp := response.ReservationToResponse(reservation, s.config.Booking.Window())
	return &resp, nil
}

func (s *reservationService) GetReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error) {
	reservation, err := s.findOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	resp := response.ReservationToResponse(reservation, s.config.Booking.Window())
	return &resp, nil
}

func (s *reservationService) ListReservations(ctx context.Context, userID string, req *request.ListReservationsRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("List reservations validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	filter := repository.ReservationFilter{
		UserID: userUUID,
		Status: entity.ReservationStatus(req.Status),
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}

	reservations, err := s.repo.Reservation.FindByFilter(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list reservations", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByFilter(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count reservations", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	window := s.config.Booking.Window()
	items := make([]response.ReservationResponse, len(reservations))
	for i, reservation := range reservations {
		items[i] = response.ReservationToResponse(reservation, window)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PageSize, total), nil
}

func (s *reservationService) Transition(ctx context.Context, userID string, reservationID string, targetStatus string) (*response.ReservationResponse, error) {
	target, ok := entity.ParseReservationStatus(targetStatus)
	if !ok {
		return nil, fmt.Errorf("validation failed: %s is not a reservation status", targetStatus)
	}

	reservation, err := s.findOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Reservation.Transition(ctx, reservation.ID, target)
	if err != nil {
		return nil, err
	}

	resp := response.ReservationToResponse(updated, s.config.Booking.Window())
	return &resp, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, userID string, reservationID string) (*response.ReservationResponse, error) {
	return s.Transition(ctx, userID, reservationID, string(entity.ReservationStatusCancelled))
}

func (s *reservationService) Pay(ctx context.Context, userID string, reservationID string, method string) (*response.ReservationResponse, error) {
	if !s.config.Payment.KnownMethod(method) {
		return nil, fmt.Errorf("pay reservation %s via %s: %w", reservationID, method, ErrUnknownPaymentMethod)
	}

	reservation, err := s.findOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status != entity.ReservationStatusPending {
		return nil, fmt.Errorf("reservation %s is %s, cannot pay: %w",
			reservationID, string(reservation.Status), repository.ErrInvalidTransition)
	}

	// Re-derive the deadline from created_at; the client countdown is only a
	// view of it. There is no server-side sweep, so the row may still say
	// pending long after the window lapsed, so record the cancel here.
	if reservation.WindowExpired(s.now(), s.config.Booking.Window()) {
		if _, terr := s.repo.Reservation.Transition(ctx, reservation.ID, entity.ReservationStatusCancelled); terr != nil &&
			!errors.Is(terr, repository.ErrInvalidTransition) {
			s.log.Warn("Failed to cancel expired reservation",
				zap.Error(terr),
				zap.String("reservation_id", reservationID),
			)
		}
		s.log.Info("Rejected payment for expired window",
			zap.String("reservation_id", reservationID),
			zap.Time("created_at", reservation.CreatedAt),
		)
		return nil, fmt.Errorf("reservation %s: %w", reservationID, ErrReservationExpired)
	}

	ref, err := s.gateway.Charge(ctx, reservation.TotalPrice, method)
	if err != nil {
		// A failed attempt neither extends nor resets the window.
		s.log.Warn("Payment charge failed",
			zap.Error(err),
			zap.String("reservation_id", reservationID),
			zap.String("method", method),
		)
		return nil, fmt.Errorf("charge reservation %s: %w", reservationID, err)
	}

	updated, err := s.repo.Reservation.Transition(ctx, reservation.ID, entity.ReservationStatusConfirmed)
	if err != nil {
		// Losing the race after a successful charge means another actor moved
		// the reservation first; the store's answer stands.
		s.log.Warn("Payment landed but confirm transition failed",
			zap.Error(err),
			zap.String("reservation_id", reservationID),
			zap.String("transaction_ref", ref),
		)
		return nil, err
	}

	s.log.Info("Payment processed",
		zap.String("reservation_id", reservationID),
		zap.String("method", method),
		zap.String("transaction_ref", ref),
		zap.Float64("amount", reservation.TotalPrice),
	)

	resp := response.ReservationToResponse(updated, s.config.Booking.Window())
	return &resp, nil
}

// findOwned fetches a reservation and enforces owner scoping.
func (s *reservationService) findOwned(ctx context.Context, userID string, reservationID string) (*entity.Reservation, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID format %s: %w", reservationID, err)
	}

	reservation, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation %s: %w", reservationID, err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, repository.ErrNotFound)
	}
	if reservation.UserID != userUUID {
		s.log.Warn("Reservation access denied",
			zap.String("reservation_id", reservationID),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("reservation %s: %w", reservationID, ErrForbidden)
	}

	return reservation, nil
}
