package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
)

type addressRepository struct {
	q *db.Queries
}

func NewAddress(pool *pgxpool.Pool) port.AddressRepository {
	return &addressRepository{q: db.New(pool)}
}

func (r *addressRepository) CreateAddress(ctx context.Context, address domain.Address) (domain.Address, error) {
	if address.OwnerID == "" {
		return domain.Address{}, fmt.Errorf("ownerID is empty")
	}

	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}

	dbAddress, err := r.q.CreateAddress(ctx, db.CreateAddressParams{
		ID:                   address.ID,
		OwnerID:              address.OwnerID,
		HouseNumberAndStreet: address.HouseNumberAndStreet,
		Area:                 address.Area,
		Town:                 address.Town,
		County:               address.County,
		Postcode:             address.Postcode,
		Country:              address.Country,
	})
	if err != nil {
		return domain.Address{}, fmt.Errorf("q.CreateAddress: %w", err)
	}

	return mapAddressToDomain(dbAddress), nil
}

func (r *addressRepository) GetAddress(ctx context.Context, ownerID string, addressID uuid.UUID) (domain.Address, error) {
	if ownerID == "" {
		return domain.Address{}, fmt.Errorf("ownerID is empty")
	}

	dbAddress, err := r.q.GetAddress(ctx, db.GetAddressParams{
		ID:      addressID,
		OwnerID: ownerID,
	})
	if err != nil {
		return domain.Address{}, notFound(err, "q.GetAddress[%s]", addressID)
	}

	return mapAddressToDomain(dbAddress), nil
}

func mapAddressToDomain(a db.Address) domain.Address {
	return domain.Address{
		ID:                   a.ID,
		OwnerID:              a.OwnerID,
		HouseNumberAndStreet: a.HouseNumberAndStreet,
		Area:                 a.Area,
		Town:                 a.Town,
		County:               a.County,
		Postcode:             a.Postcode,
		Country:              a.Country,
		CreatedAt:            a.CreatedAt,
	}
}
