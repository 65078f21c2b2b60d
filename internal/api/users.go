package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tourism-app/internal/domain"
)

// UpdateProfile no toca la sesion local; la identidad persistida solo cambia
// con login, signup o logout.
func (c *HTTPClient) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	if update.Empty() {
		return domain.User{}, domain.InvalidInputf("profile update is empty")
	}
	var out domain.User
	err := c.do(ctx, http.MethodPut, "/users/profile", update, &out)
	return out, err
}

func (c *HTTPClient) UpdateSettings(ctx context.Context, update domain.SettingsUpdate) (domain.Settings, error) {
	if update.Empty() {
		return domain.Settings{}, domain.InvalidInputf("settings update is empty")
	}
	var out domain.Settings
	err := c.do(ctx, http.MethodPut, "/users/settings", update, &out)
	return out, err
}

func (c *HTTPClient) ListFavorites(ctx context.Context) ([]domain.Destination, error) {
	var out []domain.Destination
	if err := c.do(ctx, http.MethodGet, "/users/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddFavorite(ctx context.Context, destinationID string) error {
	destinationID = strings.TrimSpace(destinationID)
	if destinationID == "" {
		return domain.InvalidInputf("destination id is required")
	}
	return c.do(ctx, http.MethodPost, "/users/favorites/"+url.PathEscape(destinationID), nil, nil)
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, destinationID string) error {
	destinationID = strings.TrimSpace(destinationID)
	if destinationID == "" {
		return domain.InvalidInputf("destination id is required")
	}
	return c.do(ctx, http.MethodDelete, "/users/favorites/"+url.PathEscape(destinationID), nil, nil)
}
