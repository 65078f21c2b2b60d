package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTransport    = errors.New("transport failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrRemote       = errors.New("remote rejected request")
	ErrDecode       = errors.New("decode failure")
	ErrEncode       = errors.New("encode failure")
)

// Error es el fallo uniforme de cualquier operacion del cliente. errors.Is
// reconoce tanto Kind como la causa subyacente.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	RequestID  string
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrRemote
	}
}

// UserMessage devuelve un texto apto para mostrar en pantalla.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(apiErr, ErrTransport):
		return "could not reach the server"
	case errors.Is(apiErr, ErrUnauthorized):
		return "please sign in again"
	case errors.Is(apiErr, ErrForbidden):
		return "you are not allowed to do that"
	case errors.Is(apiErr, ErrNotFound):
		return "not found"
	case errors.Is(apiErr, ErrConflict):
		return "already exists"
	case errors.Is(apiErr, ErrDecode):
		return "unexpected response from server"
	default:
		return "request failed"
	}
}
