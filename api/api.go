// Package api provides thin typed clients for the marketplace REST surface,
// all dispatched through the shared request pipeline.
package api

import (
	"mazad-client/httpclient"
	"mazad-client/session"
)

// API bundles every endpoint module over one pipeline client.
type API struct {
	Auth          *AuthAPI
	Categories    *CategoryAPI
	Bids          *BidAPI
	Offers        *OfferAPI
	AutoBids      *AutoBidAPI
	Chats         *ChatAPI
	Messages      *MessageAPI
	Identities    *IdentityAPI
	Subscriptions *SubscriptionAPI
	Terms         *TermsAPI
}

// New wires the endpoint modules to a pipeline client and session store.
func New(http *httpclient.Client, sessions session.Store) *API {
	return &API{
		Auth:          &AuthAPI{http: http, sessions: sessions},
		Categories:    &CategoryAPI{http: http},
		Bids:          &BidAPI{http: http},
		Offers:        &OfferAPI{http: http},
		AutoBids:      &AutoBidAPI{http: http},
		Chats:         &ChatAPI{http: http},
		Messages:      &MessageAPI{http: http},
		Identities:    &IdentityAPI{http: http},
		Subscriptions: &SubscriptionAPI{http: http},
		Terms:         &TermsAPI{http: http},
	}
}
