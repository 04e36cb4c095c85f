package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// All reservation routes require a valid session. Ownership is
	// enforced again in the service layer.
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Post("/", reservationHandler.CreateReservation)
		r.Get("/", reservationHandler.ListReservations)
		r.Get("/{id}", reservationHandler.GetReservation)
		r.Patch("/{id}", reservationHandler.UpdateStatus)
		r.Patch("/{id}/cancel", reservationHandler.CancelReservation)
		r.Post("/{id}/pay", reservationHandler.Pay)
	})
}
