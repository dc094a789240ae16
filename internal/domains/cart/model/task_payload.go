package model

import (
	"github.com/google/uuid"
)

// ClearCartPayload asks the worker to empty an owner's cart
type ClearCartPayload struct {
	OwnerID uuid.UUID `json:"owner_id"`
	Reason  string    `json:"reason"` // "logout", "admin", ...
}
