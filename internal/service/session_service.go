package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tourism-app/internal/api"
	"tourism-app/internal/domain"
	"tourism-app/internal/repository"
)

// AuthAPI es el subconjunto del cliente REST que usa el servicio de sesion.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domain.AuthResponse, error)
	Signup(ctx context.Context, input domain.SignupInput) (domain.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type remoteLogouter interface {
	Logout(ctx context.Context) error
}

// SessionRecords persiste el par {token, user}.
type SessionRecords interface {
	Load(ctx context.Context) (token string, user string, err error)
	Save(ctx context.Context, token, user string) error
	Clear(ctx context.Context) error
}

type SessionState int

const (
	StateUnknown SessionState = iota
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Snapshot es una vista de solo lectura del estado de sesion.
type Snapshot struct {
	State   SessionState
	Session domain.Session
}

func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }

type SessionOptions struct {
	// RemoteLogout llama POST /auth/logout antes de limpiar el estado local.
	RemoteLogout  bool
	LogoutTimeout time.Duration
}

var (
	ErrSuperseded          = errors.New("session operation superseded")
	ErrInvalidAuthResponse = errors.New("invalid auth response")
)

var _ api.TokenSource = (*SessionService)(nil)

type observer struct {
	id int
	fn func(Snapshot)
}

// SessionService es la unica fuente de verdad sobre quien esta autenticado y
// el unico componente que escribe el registro persistido.
//
// Cada login, signup o logout abre una nueva generacion y cancela la
// operacion en curso. Solo la generacion mas reciente puede confirmar un
// login; un logout confirma salvo que una operacion posterior ya haya
// confirmado.
type SessionService struct {
	logger  *zap.Logger
	auth    AuthAPI
	records SessionRecords
	opts    SessionOptions

	// commitMu serializa persistencia + cambio de estado + notificacion.
	commitMu sync.Mutex

	mu           sync.RWMutex
	state        SessionState
	session      domain.Session
	gen          uint64
	committedGen uint64
	cancel       context.CancelFunc
	cancelGen    uint64
	observers    []observer
	nextObserver int
}

func NewSessionService(logger *zap.Logger, auth AuthAPI, records SessionRecords, opts SessionOptions) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LogoutTimeout <= 0 {
		opts.LogoutTimeout = 3 * time.Second
	}
	return &SessionService{
		logger:  logger,
		auth:    auth,
		records: records,
		opts:    opts,
		state:   StateUnknown,
	}
}

// Restore lee el registro persistido una sola vez. Nunca falla: cualquier
// problema deja la sesion en Anonymous.
func (s *SessionService) Restore(ctx context.Context) Snapshot {
	if snap := s.Snapshot(); snap.State != StateUnknown {
		return snap
	}

	next := Snapshot{State: StateAnonymous}
	session, err := s.loadRecord(ctx)
	if err == nil {
		next = Snapshot{State: StateAuthenticated, Session: session}
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if snap := s.Snapshot(); snap.State != StateUnknown {
		return snap
	}
	if err != nil {
		s.logRestoreFailure(ctx, err)
	} else {
		s.logger.Info("session restored", zap.String("user_id", session.UserID()))
	}
	return s.commitLocked(next)
}

func (s *SessionService) loadRecord(ctx context.Context) (domain.Session, error) {
	if s.records == nil {
		return domain.Session{}, errors.New("session records not configured")
	}
	token, userJSON, err := s.records.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return domain.Session{}, fmt.Errorf("%w: decode user: %v", repository.ErrRecordTorn, err)
	}
	session := domain.Session{User: user, Token: token}
	if !session.Valid() {
		return domain.Session{}, fmt.Errorf("%w: user id missing", repository.ErrRecordTorn)
	}
	return session, nil
}

func (s *SessionService) logRestoreFailure(ctx context.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		s.logger.Info("no persisted session")
	case errors.Is(err, repository.ErrRecordTorn):
		s.logger.Warn("discarding incomplete session record", zap.Error(err))
		if clearErr := s.records.Clear(ctx); clearErr != nil {
			s.logger.Warn("clear incomplete session record failed", zap.Error(clearErr))
		}
	default:
		s.logger.Warn("restore session failed", zap.Error(err))
	}
}

// Login autentica contra la API y persiste la sesion resultante.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	// El email viaja tal cual se escribio, sin espacios alrededor; la API
	// decide si lo normaliza.
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return domain.Session{}, domain.InvalidInputf("email and password are required")
	}
	if s.auth == nil || s.records == nil {
		return domain.Session{}, errors.New("session service not configured")
	}

	opCtx, gen, done := s.begin(ctx)
	defer done()

	resp, err := s.auth.Login(opCtx, email, password)
	return s.completeAuth(ctx, gen, "login", resp, err)
}

// Signup registra una cuenta nueva con las mismas reglas que Login.
func (s *SessionService) Signup(ctx context.Context, input domain.SignupInput) (domain.Session, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	switch {
	case input.Name == "":
		return domain.Session{}, domain.InvalidInputf("name is required")
	case input.Email == "":
		return domain.Session{}, domain.InvalidInputf("email is required")
	case strings.TrimSpace(input.Password) == "":
		return domain.Session{}, domain.InvalidInputf("password is required")
	case input.Phone == "":
		return domain.Session{}, domain.InvalidInputf("phone is required")
	}
	if s.auth == nil || s.records == nil {
		return domain.Session{}, errors.New("session service not configured")
	}

	opCtx, gen, done := s.begin(ctx)
	defer done()

	resp, err := s.auth.Signup(opCtx, input)
	return s.completeAuth(ctx, gen, "signup", resp, err)
}

func (s *SessionService) completeAuth(ctx context.Context, gen uint64, op string, resp domain.AuthResponse, err error) (domain.Session, error) {
	if err != nil {
		if s.superseded(gen) {
			return domain.Session{}, fmt.Errorf("%s: %w: %w", op, ErrSuperseded, err)
		}
		s.logger.Info(op+" failed", zap.Error(err))
		return domain.Session{}, err
	}

	session := resp.Session()
	if !session.Valid() {
		return domain.Session{}, fmt.Errorf("%s: %w: token and user id are required", op, ErrInvalidAuthResponse)
	}
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: encode user: %w", op, err)
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.superseded(gen) {
		s.logger.Info(op+" response discarded", zap.String("user_id", session.UserID()))
		return domain.Session{}, fmt.Errorf("%s: %w", op, ErrSuperseded)
	}
	if err := s.records.Save(ctx, session.Token, string(userJSON)); err != nil {
		s.logger.Error("persist session failed", zap.Error(err))
		return domain.Session{}, fmt.Errorf("%s: persist session: %w", op, err)
	}
	s.markCommitted(gen)
	s.commitLocked(Snapshot{State: StateAuthenticated, Session: session})
	s.logger.Info(op+" succeeded", zap.String("user_id", session.UserID()))
	return session, nil
}

// Logout siempre termina en Anonymous. La invalidacion remota es opcional y
// sus fallos solo se registran.
func (s *SessionService) Logout(ctx context.Context) error {
	opCtx, gen, done := s.begin(ctx)
	defer done()

	if s.opts.RemoteLogout && s.Token() != "" {
		if lo, ok := s.auth.(remoteLogouter); ok {
			remoteCtx, cancel := context.WithTimeout(opCtx, s.opts.LogoutTimeout)
			if err := lo.Logout(remoteCtx); err != nil {
				s.logger.Warn("remote logout failed", zap.Error(err))
			}
			cancel()
		}
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.RLock()
	newer := s.committedGen > gen
	s.mu.RUnlock()
	if newer {
		return nil
	}

	if s.records != nil {
		if err := s.records.Clear(ctx); err != nil {
			s.logger.Error("clear session record failed", zap.Error(err))
		}
	}
	s.markCommitted(gen)
	s.commitLocked(Snapshot{State: StateAnonymous})
	s.logger.Info("logged out")
	return nil
}

// ForgotPassword no modifica la sesion.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.InvalidInputf("email is required")
	}
	if s.auth == nil {
		return errors.New("session service not configured")
	}
	return s.auth.ForgotPassword(ctx, email)
}

// ResetPassword no modifica la sesion.
func (s *SessionService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(password) == "" {
		return domain.InvalidInputf("reset token and new password are required")
	}
	if s.auth == nil {
		return errors.New("session service not configured")
	}
	return s.auth.ResetPassword(ctx, strings.TrimSpace(token), password)
}

// Subscribe registra fn para cada cambio confirmado. fn corre de forma
// sincronica tras la persistencia y no debe llamar Login, Signup, Logout ni
// Restore en el mismo hilo.
func (s *SessionService) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *SessionService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready distingue Unknown de los estados ya resueltos.
func (s *SessionService) Ready() bool {
	return s.State() != StateUnknown
}

func (s *SessionService) Current() (domain.Session, bool) {
	snap := s.Snapshot()
	if !snap.Authenticated() {
		return domain.Session{}, false
	}
	return snap.Session, true
}

// Token implementa api.TokenSource: vacio salvo en Authenticated.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return ""
	}
	return s.session.Token
}

func (s *SessionService) snapshotLocked() Snapshot {
	if s.state != StateAuthenticated {
		return Snapshot{State: s.state}
	}
	return Snapshot{State: s.state, Session: s.session}
}

// begin abre una generacion nueva y cancela la operacion anterior.
func (s *SessionService) begin(ctx context.Context) (context.Context, uint64, func()) {
	opCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.cancelGen = gen
	s.mu.Unlock()

	return opCtx, gen, func() {
		cancel()
		s.mu.Lock()
		if s.cancelGen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
}

func (s *SessionService) superseded(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen != gen
}

func (s *SessionService) markCommitted(gen uint64) {
	s.mu.Lock()
	if gen > s.committedGen {
		s.committedGen = gen
	}
	s.mu.Unlock()
}

// commitLocked aplica next y notifica. Requiere commitMu.
func (s *SessionService) commitLocked(next Snapshot) Snapshot {
	s.mu.Lock()
	s.state = next.State
	if next.State == StateAuthenticated {
		s.session = next.Session
	} else {
		s.session = domain.Session{}
	}
	snap := s.snapshotLocked()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(snap)
	}
	return snap
}
