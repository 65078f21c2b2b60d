package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tourism-app/internal/api"
	"tourism-app/internal/config"
	"tourism-app/internal/db"
	"tourism-app/internal/repository"
	"tourism-app/internal/service"
)

// app agrupa lo que comparten los subcomandos y el menu interactivo.
type app struct {
	client  *api.HTTPClient
	session *service.SessionService
	in      *bufio.Reader
	out     io.Writer
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	kv, closeKV, err := openKeyValueStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open session backend", zap.String("backend", cfg.SessionBackend), zap.Error(err))
	}

	a := newApp(cfg, logger, kv, os.Stdin, os.Stdout)
	err = a.run(ctx, os.Args[1:])
	closeKV()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", api.UserMessage(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *zap.Logger, kv repository.KeyValueStore, in io.Reader, out io.Writer) *app {
	client := api.NewHTTPClient(cfg.APIBaseURL, cfg.APITimeout(), logger)
	session := service.NewSessionService(logger, client, repository.NewSessionRecordStore(kv), service.SessionOptions{
		RemoteLogout: cfg.SessionRemoteLogout,
	})
	client.SetTokenSource(session)
	return &app{
		client:  client,
		session: session,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// run restaura la sesion y despacha el subcomando; sin argumentos abre el
// menu interactivo.
func (a *app) run(ctx context.Context, args []string) error {
	a.session.Restore(ctx)
	unsubscribe := a.session.Subscribe(func(snap service.Snapshot) {
		fmt.Fprintf(a.out, "[sesion] %s\n", describeSnapshot(snap))
	})
	defer unsubscribe()

	if len(args) == 0 {
		return a.menu(ctx)
	}
	switch args[0] {
	case "status":
		fmt.Fprintln(a.out, describeSnapshot(a.session.Snapshot()))
		return nil
	case "login":
		// la contrasena solo se lee de stdin, nunca de argv.
		if len(args) > 2 {
			return fmt.Errorf("usage: login [email] (the password is read from stdin)")
		}
		var email string
		if len(args) > 1 {
			email = args[1]
		} else {
			email = a.prompt("Email: ")
		}
		password := a.prompt("Contrasena: ")
		_, err := a.session.Login(ctx, email, password)
		return err
	case "logout":
		return a.session.Logout(ctx)
	case "destinations":
		var query string
		if len(args) > 1 {
			query = args[1]
		}
		return a.printDestinations(ctx, query)
	default:
		return fmt.Errorf("unknown command %q (use status, login, logout or destinations)", args[0])
	}
}

func describeSnapshot(snap service.Snapshot) string {
	switch snap.State {
	case service.StateAuthenticated:
		return fmt.Sprintf("autenticado como %s <%s>", snap.Session.DisplayName(), snap.Session.User.Email)
	case service.StateAnonymous:
		return "anonimo"
	default:
		return "cargando"
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	// stdout queda para el menu.
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// openKeyValueStore construye el backend elegido por SESSION_BACKEND. La
// funcion devuelta libera las conexiones abiertas.
func openKeyValueStore(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return repository.NewMemoryKeyValueStore(), func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return repository.NewRedisKeyValueStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPgKeyValueStore(pool, cfg.SessionNamespace)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case config.BackendFile:
		return repository.NewFileKeyValueStore(cfg.SessionFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
