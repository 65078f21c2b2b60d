package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tourism-app/internal/domain"
)

func (c *HTTPClient) CreateReview(ctx context.Context, input domain.CreateReviewInput) (domain.Review, error) {
	input.DestinationID = strings.TrimSpace(input.DestinationID)
	if input.DestinationID == "" {
		return domain.Review{}, domain.InvalidInputf("destination id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return domain.Review{}, domain.InvalidInputf("rating must be between 1 and 5")
	}
	var out domain.Review
	err := c.do(ctx, http.MethodPost, "/reviews", input, &out)
	return out, err
}

func (c *HTTPClient) ListDestinationReviews(ctx context.Context, destinationID string) ([]domain.Review, error) {
	destinationID = strings.TrimSpace(destinationID)
	if destinationID == "" {
		return nil, domain.InvalidInputf("destination id is required")
	}
	var out []domain.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/destination/"+url.PathEscape(destinationID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListUserReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/user", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
