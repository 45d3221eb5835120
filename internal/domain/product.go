package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID         uuid.UUID
	Name       string
	Price      Money
	Stock      int
	CategoryID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
}
