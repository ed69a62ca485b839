package api

import (
	"context"
	"path"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// AutoBidAPI wraps the automatic-bidding endpoints.
type AutoBidAPI struct {
	http *httpclient.Client
}

type CreateAutoBidRequest struct {
	AuctionID string  `json:"auction"`
	MaxPrice  float64 `json:"maxPrice"`
}

func (a *AutoBidAPI) Create(ctx context.Context, req CreateAutoBidRequest) (models.AutoBid, error) {
	env, err := a.http.Post(ctx, "auto-bids", req)
	return decodeEnvelope[models.AutoBid](env, err, "create auto-bid")
}

func (a *AutoBidAPI) ByAuction(ctx context.Context, auctionID string) ([]models.AutoBid, error) {
	env, err := a.http.Get(ctx, path.Join("auto-bid", auctionID), nil)
	return decodeEnvelope[[]models.AutoBid](env, err, "auto-bids by auction")
}

// ForAuctionUser returns the caller's auto-bid on one auction, if any.
func (a *AutoBidAPI) ForAuctionUser(ctx context.Context, auctionID string) (models.AutoBid, error) {
	env, err := a.http.Get(ctx, path.Join("auto-bid", "auction", auctionID, "user"), nil)
	return decodeEnvelope[models.AutoBid](env, err, "auto-bid for auction user")
}
