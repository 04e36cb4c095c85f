package response

import (
	"hotel-booking/internal/data/entity"
)

type HotelResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating"`
}

type RoomResponse struct {
	ID       string  `json:"id"`
	HotelID  string  `json:"hotel_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Capacity int     `json:"capacity"`
}

type HotelDetailResponse struct {
	HotelResponse
	Rooms []RoomResponse `json:"rooms"`
}

func HotelToResponse(hotel *entity.Hotel) HotelResponse {
	return HotelResponse{
		ID:      hotel.ID.String(),
		Name:    hotel.Name,
		City:    hotel.City,
		Address: hotel.Address,
		Rating:  hotel.Rating,
	}
}

func RoomToResponse(room *entity.Room) RoomResponse {
	return RoomResponse{
		ID:       room.ID.String(),
		HotelID:  room.HotelID.String(),
		Name:     room.Name,
		Price:    room.Price,
		Capacity: room.Capacity,
	}
}
