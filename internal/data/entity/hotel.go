package entity

type Hotel struct {
	Base
	Name    string  `db:"name"`
	City    string  `db:"city"`
	Address string  `db:"address"`
	Rating  float64 `db:"rating"`
}
