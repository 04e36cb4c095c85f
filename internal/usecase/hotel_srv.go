package usecase

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HotelService interface {
	ListHotels(ctx context.Context, req *request.ListHotelsRequest) (*response.PaginatedResponse[response.HotelResponse], error)
	GetHotelByID(ctx context.Context, hotelID string) (*response.HotelDetailResponse, error)
}

type hotelService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewHotelService(repo *repository.Repository, log *zap.Logger) HotelService {
	return &hotelService{
		repo: repo,
		log:  log.With(zap.String("service", "hotel")),
	}
}

func (s *hotelService) ListHotels(ctx context.Context, req *request.ListHotelsRequest) (*response.PaginatedResponse[response.HotelResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("List hotels validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	hotels, err := s.repo.Hotel.FindAll(ctx, req.City, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list hotels", zap.Error(err), zap.String("city", req.City))
		return nil, fmt.Errorf("list hotels: %w", err)
	}

	total, err := s.repo.Hotel.CountAll(ctx, req.City)
	if err != nil {
		s.log.Error("Failed to count hotels", zap.Error(err))
		return nil, fmt.Errorf("count hotels: %w", err)
	}

	items := make([]response.HotelResponse, len(hotels))
	for i, hotel := range hotels {
		items[i] = response.HotelToResponse(hotel)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PageSize, total), nil
}

func (s *hotelService) GetHotelByID(ctx context.Context, hotelID string) (*response.HotelDetailResponse, error) {
	id, err := uuid.Parse(hotelID)
	if err != nil {
		return nil, fmt.Errorf("invalid hotel ID format %s: %w", hotelID, err)
	}

	hotel, err := s.repo.Hotel.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find hotel %s: %w", hotelID, err)
	}
	if hotel == nil {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, repository.ErrNotFound)
	}

	rooms, err := s.repo.Room.FindByHotelID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load hotel rooms", zap.Error(err), zap.String("hotel_id", hotelID))
		return nil, fmt.Errorf("load rooms for hotel %s: %w", hotelID, err)
	}

	roomResponses := make([]response.RoomResponse, len(rooms))
	for i, room := range rooms {
		roomResponses[i] = response.RoomToResponse(room)
	}

	return &response.HotelDetailResponse{
		HotelResponse: response.HotelToResponse(hotel),
		Rooms:         roomResponses,
	}, nil
}
