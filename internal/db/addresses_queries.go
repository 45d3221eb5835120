package db

import (
	"context"

	"github.com/google/uuid"
)

const createAddress = `
INSERT INTO addresses (id, owner_id, house_number_and_street, area, town, county, postcode, country)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, owner_id, house_number_and_street, area, town, county, postcode, country, created_at
`

type CreateAddressParams struct {
	ID                   uuid.UUID
	OwnerID              string
	HouseNumberAndStreet string
	Area                 string
	Town                 string
	County               string
	Postcode             string
	Country              string
}

func (q *Queries) CreateAddress(ctx context.Context, arg CreateAddressParams) (Address, error) {
	row := q.db.QueryRow(ctx, createAddress,
		arg.ID,
		arg.OwnerID,
		arg.HouseNumberAndStreet,
		arg.Area,
		arg.Town,
		arg.County,
		arg.Postcode,
		arg.Country,
	)
	var i Address
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.HouseNumberAndStreet,
		&i.Area,
		&i.Town,
		&i.County,
		&i.Postcode,
		&i.Country,
		&i.CreatedAt,
	)
	return i, err
}

const getAddress = `
SELECT id, owner_id, house_number_and_street, area, town, county, postcode, country, created_at FROM addresses
WHERE id = $1 AND owner_id = $2
`

type GetAddressParams struct {
	ID      uuid.UUID
	OwnerID string
}

func (q *Queries) GetAddress(ctx context.Context, arg GetAddressParams) (Address, error) {
	row := q.db.QueryRow(ctx, getAddress, arg.ID, arg.OwnerID)
	var i Address
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.HouseNumberAndStreet,
		&i.Area,
		&i.Town,
		&i.County,
		&i.Postcode,
		&i.Country,
		&i.CreatedAt,
	)
	return i, err
}
