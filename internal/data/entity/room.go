package entity

import (
	"github.com/google/uuid"
)

type Room struct {
	Base
	HotelID  uuid.UUID `db:"hotel_id"`
	Name     string    `db:"name"`
	Price    float64   `db:"price"`
	Capacity int       `db:"capacity"`
}
