package domain

import "time"

type Review struct {
	ID            string    `json:"id"`
	DestinationID string    `json:"destinationId"`
	UserID        string    `json:"userId,omitempty"`
	Rating        int       `json:"rating"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}

type CreateReviewInput struct {
	DestinationID string `json:"destinationId"`
	Rating        int    `json:"rating"`
	Title         string `json:"title"`
	Content       string `json:"content"`
}
