package request

type CreateReservationRequest struct {
	HotelID    string  `json:"hotel_id" validate:"required,uuid4"`
	RoomID     string  `json:"room_id" validate:"required,uuid4"`
	CheckIn    string  `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string  `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestName  string  `json:"guest_name" validate:"required,min=1,max=64"`
	GuestPhone string  `json:"guest_phone" validate:"required,cnmobile"`
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
}

type ListReservationsRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

type PayReservationRequest struct {
	Method string `json:"method" validate:"required,min=1,max=32"`
}
