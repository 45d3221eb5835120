package domain

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID      uuid.UUID
	OwnerID string

	HouseNumberAndStreet string
	Area                 string
	Town                 string
	County               string
	Postcode             string
	Country              string

	CreatedAt time.Time
}

// AddressSnapshot is the copy of an address frozen into an order.
type AddressSnapshot struct {
	HouseNumberAndStreet string
	Area                 string
	Town                 string
	County               string
	Postcode             string
	Country              string
}

func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		HouseNumberAndStreet: a.HouseNumberAndStreet,
		Area:                 a.Area,
		Town:                 a.Town,
		County:               a.County,
		Postcode:             a.Postcode,
		Country:              a.Country,
	}
}
