package repository

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationFilter struct {
	UserID uuid.UUID
	Status entity.ReservationStatus // empty = all statuses
	Limit  int
	Offset int
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByFilter(ctx context.Context, filter ReservationFilter) ([]*entity.Reservation, error)
	CountByFilter(ctx context.Context, filter ReservationFilter) (int64, error)

	// Transition applies a guarded status change. It succeeds only when the
	// row's current status permits the target, so two racing transitions on
	// the same id can never both install terminal statuses.
	Transition(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, hotel_id, room_id, user_id, guest_name, guest_phone,
	       check_in, check_out, total_price, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID,
		&res.HotelID,
		&res.RoomID,
		&res.UserID,
		&res.GuestName,
		&res.GuestPhone,
		&res.CheckIn,
		&res.CheckOut,
		&res.TotalPrice,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, hotel_id, room_id, user_id, guest_name, guest_phone,
		                          check_in, check_out, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		reservation.ID,
		reservation.HotelID,
		reservation.RoomID,
		reservation.UserID,
		reservation.GuestName,
		reservation.GuestPhone,
		reservation.CheckIn,
		reservation.CheckOut,
		reservation.TotalPrice,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("reservation_id", reservation.ID.String()),
			zap.String("user_id", reservation.UserID.String()),
		)
		return fmt.Errorf("create reservation %s: %w", reservation.ID.String(), err)
	}

	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`

	res, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	return res, nil
}

func (r *reservationRepository) FindByFilter(ctx context.Context, filter ReservationFilter) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, filter.UserID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		r.log.Error("Failed to find reservations",
			zap.Error(err),
			zap.String("user_id", filter.UserID.String()),
			zap.String("status", string(filter.Status)),
		)
		return nil, fmt.Errorf("find reservations for user %s: %w", filter.UserID.String(), err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

func (r *reservationRepository) CountByFilter(ctx context.Context, filter ReservationFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND ($2 = '' OR status = $2)`

	var count int64
	err := r.db.QueryRow(ctx, query, filter.UserID, string(filter.Status)).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reservations",
			zap.Error(err),
			zap.String("user_id", filter.UserID.String()),
		)
		return 0, fmt.Errorf("count reservations for user %s: %w", filter.UserID.String(), err)
	}

	return count, nil
}

// Transition performs a per-row compare-and-swap: the UPDATE only matches when
// the current status is the one the target may be reached from, so the
// database serializes concurrent transition attempts on the same id. Exactly
// one of two racing calls sees the row; the other gets ErrInvalidTransition.
func (r *reservationRepository) Transition(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error) {
	source, ok := entity.TransitionSource(target)
	if !ok {
		return nil, fmt.Errorf("reservation %s: %s is not a reachable status: %w",
			id.String(), string(target), ErrInvalidTransition)
	}

	query := `
		UPDATE reservations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.db.QueryRow(ctx, query, id, target, source))
	if err == pgx.ErrNoRows {
		// The guard did not match. Re-read to tell a missing row from an
		// illegal transition; the caller needs the distinction.
		current, ferr := r.FindByID(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		if current == nil {
			return nil, fmt.Errorf("reservation %s: %w", id.String(), ErrNotFound)
		}
		r.log.Warn("Rejected status transition",
			zap.String("reservation_id", id.String()),
			zap.String("current_status", string(current.Status)),
			zap.String("target_status", string(target)),
		)
		return nil, fmt.Errorf("reservation %s is %s, cannot move to %s: %w",
			id.String(), string(current.Status), string(target), ErrInvalidTransition)
	}
	if err != nil {
		r.log.Error("Failed to transition reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("target_status", string(target)),
		)
		return nil, fmt.Errorf("transition reservation %s to %s: %w", id.String(), string(target), err)
	}

	r.log.Info("Reservation status changed",
		zap.String("reservation_id", id.String()),
		zap.String("from", string(source)),
		zap.String("to", string(target)),
	)

	return res, nil
}
