package lifecycle

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"

	"github.com/google/uuid"
)

// repositoryStore adapts the reservation repository to the Store
// interface. The repository reads a missing row back as nil, nil; the
// controller wants an error it can branch on.
type repositoryStore struct {
	repo repository.ReservationRepository
}

// NewRepositoryStore wraps a reservation repository for in-process use
// of the controller, for example in an admin tool sharing the database.
func NewRepositoryStore(repo repository.ReservationRepository) Store {
	return &repositoryStore{repo: repo}
}

func (s *repositoryStore) Get(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %s: %w", id.String(), repository.ErrNotFound)
	}
	return res, nil
}

func (s *repositoryStore) Transition(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error) {
	return s.repo.Transition(ctx, id, target)
}
