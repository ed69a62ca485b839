package models

import "time"

// SubscriptionPlan is a purchasable subscription tier.
type SubscriptionPlan struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"durationDays"`
	Role         string  `json:"role,omitempty"`
	IsActive     bool    `json:"isActive"`
}

// Payment statuses reported by the payment endpoints.
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentFailed    = "failed"
)

// Payment is one subscription payment attempt.
type Payment struct {
	ID          string    `json:"_id"`
	PlanID      string    `json:"plan"`
	UserID      string    `json:"user"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
	ProviderRef string    `json:"providerRef,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SubscriptionStats is the admin statistics payload.
type SubscriptionStats struct {
	ActiveSubscriptions int     `json:"activeSubscriptions"`
	PendingPayments     int     `json:"pendingPayments"`
	ConfirmedPayments   int     `json:"confirmedPayments"`
	Revenue             float64 `json:"revenue"`
}
