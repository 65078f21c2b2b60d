package domain

import "strings"

// Session es la identidad autenticada junto con su credencial.
// Solo existe si hay token: ambos se crean y se borran juntos.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"-"`
}

func (s Session) UserID() string      { return s.User.ID }
func (s Session) DisplayName() string { return s.User.Name }

// Valid indica si la sesion tiene token e identificador de usuario.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != "" && strings.TrimSpace(s.User.ID) != ""
}

// AuthResponse es el cuerpo devuelto por /auth/login y /auth/signup.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (r AuthResponse) Session() Session {
	return Session{User: r.User, Token: r.Token}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}
