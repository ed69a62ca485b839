package models

import "time"

// Auction is a single bid listing.
type Auction struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	CategoryID    string    `json:"category,omitempty"`
	SellerID      string    `json:"seller"`
	StartingPrice float64   `json:"startingPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	EndingAt      time.Time `json:"endingAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Offer is a bid placed on an auction.
type Offer struct {
	ID        string    `json:"_id"`
	AuctionID string    `json:"auction"`
	UserID    string    `json:"user"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

// AutoBid raises the user's offer automatically up to MaxPrice.
type AutoBid struct {
	ID        string    `json:"_id"`
	AuctionID string    `json:"auction"`
	UserID    string    `json:"user"`
	MaxPrice  float64   `json:"maxPrice"`
	CreatedAt time.Time `json:"createdAt"`
}
