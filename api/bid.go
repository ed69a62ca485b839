package api

import (
	"context"
	"path"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// BidAPI wraps the auction listing endpoints.
type BidAPI struct {
	http *httpclient.Client
}

func (a *BidAPI) List(ctx context.Context) ([]models.Auction, error) {
	env, err := a.http.Get(ctx, "bid", nil)
	return decodeEnvelope[[]models.Auction](env, err, "list auctions")
}

func (a *BidAPI) Get(ctx context.Context, id string) (models.Auction, error) {
	env, err := a.http.Get(ctx, path.Join("bid", id), nil)
	return decodeEnvelope[models.Auction](env, err, "auction")
}
