package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"

	maxResponseBytes = 4 << 20
)

// TokenSource entrega la credencial vigente. Un token vacio significa que la
// peticion sale sin autenticar.
type TokenSource interface {
	Token() string
}

// HTTPClient traduce operaciones de dominio a peticiones REST contra la API
// de turismo. No guarda estado de negocio: solo la referencia al TokenSource.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

// NewHTTPClient construye un cliente apuntando a baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetTokenSource define de donde sale el bearer token de cada peticion.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return strings.TrimSpace(ts.Token())
}

// do ejecuta una peticion y decodifica la respuesta en out (si no es nil).
// Cualquier fallo se devuelve como *Error, una sola vez y sin reintentos.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	requestID := uuid.NewString()
	fail := func(kind error, status int, message string, cause error) error {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Message:    message,
			RequestID:  requestID,
			Kind:       kind,
			Err:        cause,
		}
	}

	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fail(ErrEncode, 0, "", fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(ErrTransport, 0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	authenticated := false
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		authenticated = true
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fail(ErrTransport, 0, "", fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(ErrTransport, resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.Bool("authenticated", authenticated),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(kindForStatus(resp.StatusCode), resp.StatusCode, remoteMessage(respBody), nil)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fail(ErrDecode, resp.StatusCode, "", fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

// remoteMessage extrae el texto de error que manda el servidor, si lo hay.
func remoteMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Message)
}
