package wire

import (
	"time"

	"hotel-booking/internal/adaptor"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

func wireHotel(
	r chi.Router,
	hotelHandler *adaptor.HotelHandler,
	store *cache.Cache,
	config *utils.Config,
	log *zap.Logger,
) {
	// Public catalog, cached. Hotel data changes rarely compared to
	// reservation state, so a short TTL cache absorbs repeat reads.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Cache(store, time.Duration(config.Server.CacheTTLSeconds)*time.Second))

		r.Get("/api/hotels", hotelHandler.ListHotels)
		r.Get("/api/hotels/{id}", hotelHandler.GetHotelByID)
	})
}
