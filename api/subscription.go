package api

import (
	"context"
	"path"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// SubscriptionAPI wraps subscription plans, payments, and the admin
// maintenance endpoints. The simulate endpoint drives the mock payment
// provider used in local testing.
type SubscriptionAPI struct {
	http *httpclient.Client
}

func (a *SubscriptionAPI) Plans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	env, err := a.http.Get(ctx, "subscription/plans", nil)
	return decodeEnvelope[[]models.SubscriptionPlan](env, err, "list plans")
}

func (a *SubscriptionAPI) Plan(ctx context.Context, id string) (models.SubscriptionPlan, error) {
	env, err := a.http.Get(ctx, path.Join("subscription", "plans", id), nil)
	return decodeEnvelope[models.SubscriptionPlan](env, err, "plan")
}

func (a *SubscriptionAPI) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (models.SubscriptionPlan, error) {
	env, err := a.http.Post(ctx, "subscription/plans", plan)
	return decodeEnvelope[models.SubscriptionPlan](env, err, "create plan")
}

func (a *SubscriptionAPI) UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) (models.SubscriptionPlan, error) {
	env, err := a.http.Put(ctx, path.Join("subscription", "plans", plan.ID), plan)
	return decodeEnvelope[models.SubscriptionPlan](env, err, "update plan")
}

func (a *SubscriptionAPI) DeletePlan(ctx context.Context, id string) error {
	env, err := a.http.Delete(ctx, path.Join("subscription", "plans", id))
	return checkEnvelope(env, err, "delete plan")
}

type CreatePaymentRequest struct {
	PlanID    string `json:"plan"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

// CreatePayment starts a payment for a plan; the returned Payment carries
// the provider redirect URL.
func (a *SubscriptionAPI) CreatePayment(ctx context.Context, req CreatePaymentRequest) (models.Payment, error) {
	env, err := a.http.Post(ctx, "subscription/payment", req)
	return decodeEnvelope[models.Payment](env, err, "create payment")
}

func (a *SubscriptionAPI) ConfirmPayment(ctx context.Context, paymentID string) (models.Payment, error) {
	env, err := a.http.Post(ctx, path.Join("subscription", "payment", paymentID, "confirm"), nil)
	return decodeEnvelope[models.Payment](env, err, "confirm payment")
}

func (a *SubscriptionAPI) PaymentStatus(ctx context.Context, paymentID string) (models.Payment, error) {
	env, err := a.http.Get(ctx, path.Join("subscription", "payment", paymentID, "status"), nil)
	return decodeEnvelope[models.Payment](env, err, "payment status")
}

// Stats returns the admin subscription statistics.
func (a *SubscriptionAPI) Stats(ctx context.Context) (models.SubscriptionStats, error) {
	env, err := a.http.Get(ctx, "subscription/admin/stats", nil)
	return decodeEnvelope[models.SubscriptionStats](env, err, "subscription stats")
}

// Cleanup removes stale pending payments (admin maintenance).
func (a *SubscriptionAPI) Cleanup(ctx context.Context) error {
	env, err := a.http.Post(ctx, "subscription/admin/cleanup", nil)
	return checkEnvelope(env, err, "subscription cleanup")
}

// SimulatePayment asks the mock provider to settle a payment with the given
// outcome ("confirmed" or "failed"). Local testing only.
func (a *SubscriptionAPI) SimulatePayment(ctx context.Context, paymentID, outcome string) (models.Payment, error) {
	env, err := a.http.Post(ctx, path.Join("subscription", "payment", paymentID, "simulate"), map[string]string{
		"outcome": outcome,
	})
	return decodeEnvelope[models.Payment](env, err, "simulate payment")
}
