package domain

import "strings"

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar,omitempty"`
}

// ProfileUpdate es un cambio parcial del perfil; los campos nil no se envian.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Avatar == nil
}

type Settings struct {
	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"darkMode"`
	EmailUpdates  bool `json:"emailUpdates"`
}

type SettingsUpdate struct {
	Notifications *bool `json:"notifications,omitempty"`
	DarkMode      *bool `json:"darkMode,omitempty"`
	EmailUpdates  *bool `json:"emailUpdates,omitempty"`
}

func (s SettingsUpdate) Empty() bool {
	return s.Notifications == nil && s.DarkMode == nil && s.EmailUpdates == nil
}

// NormalizeEmail recorta espacios y pasa a minusculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
