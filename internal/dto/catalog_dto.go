package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateServiceRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Media       []string        `json:"media"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

type SlotBlockRequest struct {
	Blocked bool `json:"blocked"`
}

type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}
