package usecase

import (
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/payment"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth        AuthService
	Hotel       HotelService
	Reservation ReservationService
}

func NewService(repo *repository.Repository, gateway payment.Gateway, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:        NewAuthService(repo, config, log),
		Hotel:       NewHotelService(repo, log),
		Reservation: NewReservationService(repo, gateway, config, log),
	}
}
