package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/linkpitch/internal/app/prompt"
	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/metrics"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	HistoryWindow int
	MaxTokens     int
	Temperature   *float64 // nil means DefaultTemperature; 0 is a valid setting
	Model         string
	Provider      string
}

// Service runs one generation: load history and profiles, aggregate, render
// the prompt, call the chat capability, then record an audit artifact.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	chat     domain.ChatClient
	messages domain.MessageStore
	contacts domain.ContactStore
	users    domain.UserStore
	recorder domain.DebugRecorder
	metrics  *metrics.Metrics
	cfg      Config
	now      func() time.Time

	temperature float64
}

// NewService wires the orchestrator. contacts, users and recorder may be nil.
func NewService(
	chat domain.ChatClient,
	messages domain.MessageStore,
	contacts domain.ContactStore,
	users domain.UserStore,
	recorder domain.DebugRecorder,
	cfg Config,
) *Service {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &Service{
		chat:        chat,
		messages:    messages,
		contacts:    contacts,
		users:       users,
		recorder:    recorder,
		cfg:         cfg,
		temperature: temperature,
		now:         time.Now,
	}
}

// WithMetrics attaches collectors and returns s.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Generate produces a message for contactID on behalf of ownerID. Any failure
// loading history or profiles, or from the chat capability, is returned as a
// *domain.Error of kind MESSAGE_GENERATION_ERROR.
func (s *Service) Generate(
	ctx context.Context,
	contactID domain.ContactID,
	ownerID domain.OwnerID,
	raw domain.RawContext,
) (*domain.GenerationResult, error) {
	start := s.now()
	log := observability.LoggerFromContext(ctx).With(
		"contact_id", contactID,
		"owner_id", ownerID,
	)
	log.Info("generating message")

	in, err := s.load(ctx, contactID, ownerID)
	if err != nil {
		log.Error("failed to load generation inputs", "error", err)
		s.metrics.ObserveGeneration("unknown", "error", time.Since(start))
		return nil, domain.NewError(domain.KindMessageGenerationError, "Failed to generate message", err)
	}

	gc := BuildContext(in.contact, in.user, in.history, raw, s.cfg.HistoryWindow)
	mode := prompt.ModeFor(gc)
	p := prompt.Build(gc)
	log = log.With("mode", mode, "history_count", len(gc.History))

	reply, err := s.chat.GenerateChat(ctx, p.Messages, domain.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.temperature,
		Model:       s.cfg.Model,
		Provider:    s.cfg.Provider,
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("generation capability returned no content")
	}
	if err != nil {
		log.Error("chat generation failed", "error", err)
		s.metrics.ObserveGeneration(string(mode), "error", time.Since(start))
		return nil, domain.NewError(domain.KindMessageGenerationError, "Failed to generate message", err)
	}
	reply = strings.TrimSpace(reply)

	s.record(ctx, domain.GenerationArtifact{
		ContactID:    contactID,
		UserID:       ownerID,
		Timestamp:    domain.ArtifactTimestamp(s.now()),
		Context:      raw,
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		ChatHistory:  gc.History,
		Messages:     p.Messages,
		Generated:    reply,
	})

	elapsed := time.Since(start)
	s.metrics.ObserveGeneration(string(mode), "success", elapsed)
	log.Info("message generated", "elapsed_ms", elapsed.Milliseconds(), "length", len(reply))

	return &domain.GenerationResult{
		Success:        true,
		Message:        reply,
		PromptMessages: p.Messages,
	}, nil
}

// Preview renders the prompt Generate would send, without calling the chat
// capability or recording an artifact.
func (s *Service) Preview(
	ctx context.Context,
	contactID domain.ContactID,
	ownerID domain.OwnerID,
	raw domain.RawContext,
) (prompt.Prompt, prompt.Mode, error) {
	in, err := s.load(ctx, contactID, ownerID)
	if err != nil {
		return prompt.Prompt{}, "", domain.NewError(domain.KindMessageGenerationError, "Failed to generate message", err)
	}
	gc := BuildContext(in.contact, in.user, in.history, raw, s.cfg.HistoryWindow)
	return prompt.Build(gc), prompt.ModeFor(gc), nil
}

type inputs struct {
	history []domain.ConversationMessage
	contact *domain.ContactProfile
	user    *domain.UserProfile
}

// load fetches history and both profiles in parallel. A missing profile is
// not an error; the raw context can stand in for it.
func (s *Service) load(ctx context.Context, contactID domain.ContactID, ownerID domain.OwnerID) (inputs, error) {
	var in inputs
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		// whole thread: blank turns are dropped before the window is applied
		h, err := s.messages.FindHistory(egCtx, contactID, ownerID, 0)
		if err != nil {
			return fmt.Errorf("find history: %w", err)
		}
		in.history = h
		return nil
	})

	if s.contacts != nil {
		eg.Go(func() error {
			c, err := s.contacts.FindContactProfile(egCtx, contactID, ownerID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("find contact profile: %w", err)
			}
			if err == nil {
				in.contact = c
			}
			return nil
		})
	}

	if s.users != nil {
		eg.Go(func() error {
			u, err := s.users.FindUserProfile(egCtx, ownerID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("find user profile: %w", err)
			}
			if err == nil {
				in.user = u
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

// record hands the artifact to the recorder. A panicking recorder is logged
// and otherwise ignored.
func (s *Service) record(ctx context.Context, artifact domain.GenerationArtifact) {
	if s.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			observability.LoggerFromContext(ctx).Warn("debug recorder panicked", "panic", fmt.Sprint(r))
			s.metrics.ObserveDebugArtifact("failed")
		}
	}()
	s.recorder.Record(ctx, artifact)
}
