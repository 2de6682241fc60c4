// Package bootstrap wires configuration into stores, adapters and services.
// Both binaries build their dependencies through it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PabloGalante/linkpitch/internal/adapters/debug"
	httpadapter "github.com/PabloGalante/linkpitch/internal/adapters/http"
	"github.com/PabloGalante/linkpitch/internal/adapters/llm"
	"github.com/PabloGalante/linkpitch/internal/adapters/scraper"
	firestorestore "github.com/PabloGalante/linkpitch/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/linkpitch/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/linkpitch/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/linkpitch/internal/app/contacts"
	"github.com/PabloGalante/linkpitch/internal/app/generation"
	"github.com/PabloGalante/linkpitch/internal/config"
	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/metrics"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

// App is the fully wired object graph.
type App struct {
	Config     *config.Config
	Metrics    *metrics.Metrics
	Chat       domain.ChatClient
	Scraper    *scraper.Client
	Generation *generation.Service
	Contacts   *contacts.Service
	AIStatus   httpadapter.AIStatus

	closers []func() error
}

// Deps returns the dependencies of the HTTP adapter.
func (a *App) Deps() httpadapter.Deps {
	return httpadapter.Deps{
		Generation: a.Generation,
		Contacts:   a.Contacts,
		Scraper:    a.Scraper,
		Metrics:    a.Metrics,
		AIStatus:   a.AIStatus,
	}
}

// Close releases the storage backend.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

type stores struct {
	messages domain.MessageStore
	contacts domain.ContactStore
	users    domain.UserStore
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := observability.WithFields("component", "bootstrap")
	app := &App{Config: cfg, Metrics: metrics.New()}

	st, err := app.openStores(ctx)
	if err != nil {
		return nil, err
	}

	chat, status, err := newChatClient(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Chat = chat
	app.AIStatus = status
	log.Info("chat client ready",
		"provider", status.Provider,
		"model", status.Model,
		"configured", status.Configured,
	)

	var recorder domain.DebugRecorder = debug.Nop{}
	if cfg.Debug.Enabled {
		recorder = debug.NewFileRecorder(cfg.Debug.Dir, app.Metrics)
		log.Info("debug artifacts enabled", "dir", cfg.Debug.Dir)
	}

	app.Scraper = scraper.New(cfg.Scraper.BaseURL, time.Duration(cfg.Scraper.TimeoutSeconds)*time.Second, app.Metrics)
	app.Generation = generation.NewService(chat, st.messages, st.contacts, st.users, recorder, generation.Config{
		HistoryWindow: cfg.Generation.HistoryWindow,
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   &cfg.LLM.Temperature,
		Model:         cfg.LLM.Model,
		Provider:      cfg.LLM.HFProvider,
	}).WithMetrics(app.Metrics)
	app.Contacts = contacts.NewService(st.contacts, st.users, st.messages)

	return app, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	log := observability.WithFields("component", "bootstrap")

	switch a.Config.Storage.Backend {
	case "firestore":
		log.Info("using firestore storage", "project", a.Config.Storage.GCPProject)
		fs, err := firestorestore.NewStore(ctx, a.Config.Storage.GCPProject)
		if err != nil {
			return stores{}, fmt.Errorf("init firestore store: %w", err)
		}
		a.closers = append(a.closers, fs.Close)
		// 1 store, implements 3 interfaces
		return stores{messages: fs, contacts: fs, users: fs}, nil

	case "sqlite":
		log.Info("using sqlite storage", "path", a.Config.Storage.SQLitePath)
		db, err := sqlitestore.Open(a.Config.Storage.SQLitePath)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			_ = a.Close()
			return stores{}, err
		}
		return stores{messages: db, contacts: db, users: db}, nil

	default:
		log.Info("using in-memory storage")
		profiles := memstore.NewProfileStore()
		return stores{messages: memstore.NewMessageStore(), contacts: profiles, users: profiles}, nil
	}
}

func newChatClient(ctx context.Context, cfg *config.Config) (domain.ChatClient, httpadapter.AIStatus, error) {
	status := httpadapter.AIStatus{Provider: string(cfg.LLM.Provider), Model: cfg.LLM.Model}

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		c := llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.HFProvider)
		status.Configured = c.Configured()
		return c, status, nil

	case config.ProviderGemini:
		c, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:   cfg.LLM.APIKey,
			Project:  cfg.LLM.GCPProject,
			Location: cfg.LLM.GCPLocation,
			Model:    cfg.LLM.Model,
		})
		if domain.IsKind(err, domain.KindConfigurationError) {
			// missing credentials surface on first use, not at startup
			return llm.Unconfigured{Err: err}, status, nil
		}
		if err != nil {
			return nil, status, err
		}
		status.Configured = true
		return c, status, nil

	default:
		status.Model = "mock"
		status.Configured = true
		return llm.NewMockLLM(), status, nil
	}
}
