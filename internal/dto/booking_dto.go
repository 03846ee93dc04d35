package dto

import "github.com/google/uuid"

type CreateBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	PaymentID string    `json:"payment_id"`
}

type ListResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
