package models

import "time"

// Identity is a marketplace identity record (buyer, reseller, admin).
type Identity struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	DisplayName string    `json:"displayName,omitempty"`
	Role        string    `json:"role,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Identity roles as used by the directory lookup.
const (
	RoleAdmin    = "admin"
	RoleReseller = "reseller"
	RoleBuyer    = "buyer"
)
