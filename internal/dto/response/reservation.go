package response

import (
	"time"

	"hotel-booking/internal/data/entity"
)

type ReservationResponse struct {
	ID         string                   `json:"id"`
	HotelID    string                   `json:"hotel_id"`
	RoomID     string                   `json:"room_id"`
	UserID     string                   `json:"user_id"`
	GuestName  string                   `json:"guest_name"`
	GuestPhone string                   `json:"guest_phone"`
	CheckIn    string                   `json:"check_in"`
	CheckOut   string                   `json:"check_out"`
	TotalPrice float64                  `json:"total_price"`
	Status     entity.ReservationStatus `json:"status"`
	// PayBefore is the payment deadline, present only while pending. Clients
	// seed their countdown from it; the server recomputes it from created_at
	// on every response so reloads never trust stale timer state.
	PayBefore *time.Time `json:"pay_before,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func ReservationToResponse(res *entity.Reservation, window time.Duration) ReservationResponse {
	resp := ReservationResponse{
		ID:         res.ID.String(),
		HotelID:    res.HotelID.String(),
		RoomID:     res.RoomID.String(),
		UserID:     res.UserID.String(),
		GuestName:  res.GuestName,
		GuestPhone: res.GuestPhone,
		CheckIn:    res.CheckIn.Format("2006-01-02"),
		CheckOut:   res.CheckOut.Format("2006-01-02"),
		TotalPrice: res.TotalPrice,
		Status:     res.Status,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}

	if res.Status == entity.ReservationStatusPending {
		deadline := res.PaymentDeadline(window)
		resp.PayBefore = &deadline
	}

	return resp
}
