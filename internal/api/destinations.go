package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tourism-app/internal/domain"
)

func (c *HTTPClient) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	var out []domain.Destination
	if err := c.do(ctx, http.MethodGet, "/destinations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetDestination(ctx context.Context, id string) (domain.Destination, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Destination{}, domain.InvalidInputf("destination id is required")
	}
	var out domain.Destination
	err := c.do(ctx, http.MethodGet, "/destinations/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *HTTPClient) ListDestinationsByCategory(ctx context.Context, category string) ([]domain.Destination, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.InvalidInputf("category is required")
	}
	var out []domain.Destination
	if err := c.do(ctx, http.MethodGet, "/destinations/category/"+url.PathEscape(category), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchDestinations(ctx context.Context, query string) ([]domain.Destination, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.InvalidInputf("search query is required")
	}
	var out []domain.Destination
	if err := c.do(ctx, http.MethodGet, "/destinations/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
