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

type HotelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error)
	FindAll(ctx context.Context, city string, limit, offset int) ([]*entity.Hotel, error)
	CountAll(ctx context.Context, city string) (int64, error)
}

type hotelRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHotelRepository(db database.PgxIface, log *zap.Logger) HotelRepository {
	return &hotelRepository{
		db:  db,
		log: log.With(zap.String("repository", "hotel")),
	}
}

func (r *hotelRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error) {
	query := `
		SELECT id, name, city, address, rating, created_at, updated_at
		FROM hotels
		WHERE id = $1
	`

	var hotel entity.Hotel
	err := r.db.QueryRow(ctx, query, id).Scan(
		&hotel.ID,
		&hotel.Name,
		&hotel.City,
		&hotel.Address,
		&hotel.Rating,
		&hotel.CreatedAt,
		&hotel.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hotel by ID",
			zap.Error(err),
			zap.String("hotel_id", id.String()),
		)
		return nil, fmt.Errorf("find hotel by ID %s: %w", id.String(), err)
	}

	return &hotel, nil
}

func (r *hotelRepository) FindAll(ctx context.Context, city string, limit, offset int) ([]*entity.Hotel, error) {
	query := `
		SELECT id, name, city, address, rating, created_at, updated_at
		FROM hotels
		WHERE ($1 = '' OR city = $1)
		ORDER BY rating DESC, name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, city, limit, offset)
	if err != nil {
		r.log.Error("Failed to find hotels",
			zap.Error(err),
			zap.String("city", city),
		)
		return nil, fmt.Errorf("find hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*entity.Hotel
	for rows.Next() {
		var hotel entity.Hotel
		err := rows.Scan(
			&hotel.ID,
			&hotel.Name,
			&hotel.City,
			&hotel.Address,
			&hotel.Rating,
			&hotel.CreatedAt,
			&hotel.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan hotel row", zap.Error(err))
			return nil, fmt.Errorf("scan hotel row: %w", err)
		}
		hotels = append(hotels, &hotel)
	}

	return hotels, nil
}

func (r *hotelRepository) CountAll(ctx context.Context, city string) (int64, error) {
	query := `SELECT COUNT(*) FROM hotels WHERE ($1 = '' OR city = $1)`

	var count int64
	err := r.db.QueryRow(ctx, query, city).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count hotels", zap.Error(err), zap.String("city", city))
		return 0, fmt.Errorf("count hotels: %w", err)
	}

	return count, nil
}
