package api

import (
	"context"
	"path"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// OfferAPI wraps bid offers placed on auctions.
type OfferAPI struct {
	http *httpclient.Client
}

type CreateOfferRequest struct {
	AuctionID string  `json:"auction"`
	Price     float64 `json:"price"`
}

func (a *OfferAPI) Create(ctx context.Context, req CreateOfferRequest) (models.Offer, error) {
	env, err := a.http.Post(ctx, "offers", req)
	return decodeEnvelope[models.Offer](env, err, "create offer")
}

func (a *OfferAPI) ByAuction(ctx context.Context, auctionID string) ([]models.Offer, error) {
	env, err := a.http.Get(ctx, path.Join("offers", auctionID), nil)
	return decodeEnvelope[[]models.Offer](env, err, "offers by auction")
}

func (a *OfferAPI) ByUser(ctx context.Context, userID string) ([]models.Offer, error) {
	env, err := a.http.Get(ctx, path.Join("offers", "user", userID), nil)
	return decodeEnvelope[[]models.Offer](env, err, "offers by user")
}
