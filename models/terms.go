package models

import "time"

// Terms is a published terms-of-service document.
type Terms struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Version     int       `json:"version"`
	PublishedAt time.Time `json:"publishedAt"`
}
