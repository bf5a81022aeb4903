package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/influencer-insight-go/internal/domain"
	"github.com/kapu/influencer-insight-go/internal/service/report"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
	"go.uber.org/zap"
)

type Analyzer interface {
	Analyze(ctx context.Context, url string, lang domain.Language) (*domain.AnalysisReport, error)
}

type Translator interface {
	Translate(ctx context.Context, src *domain.AnalysisReport, lang domain.Language) (*domain.AnalysisReport, report.Outcome)
}

// Controller runs session transitions against the store and the report
// services. Transitions on one session id never interleave; model calls run
// outside the lock and their results are applied only if still current.
type Controller struct {
	store       Store
	hub         *Hub
	analyzer    Analyzer
	translator  Translator
	defaultLang domain.Language
	locks       *keyedMutex
	now         func() time.Time
	logger      *zap.Logger
}

func NewController(store Store, hub *Hub, analyzer Analyzer, translator Translator, defaultLang domain.Language, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hub == nil {
		hub = NewHub(logger)
	}
	return &Controller{
		store:       store,
		hub:         hub,
		analyzer:    analyzer,
		translator:  translator,
		defaultLang: domain.ParseLanguage(string(defaultLang), domain.DefaultLanguage),
		locks:       newKeyedMutex(),
		now:         time.Now,
		logger:      logger,
	}
}

func (c *Controller) Hub() *Hub {
	return c.hub
}

// Create starts a new idle session. An empty lang uses the configured default.
func (c *Controller) Create(ctx context.Context, lang domain.Language) (*State, error) {
	state := NewState(uuid.NewString(), domain.ParseLanguage(string(lang), c.defaultLang))
	if err := c.save(ctx, state); err != nil {
		return nil, err
	}
	c.logger.Info("Session created", zap.String("session", state.ID), zap.String("language", string(state.Language)))
	return state, nil
}

func (c *Controller) Get(ctx context.Context, id string) (*State, error) {
	return c.store.Get(ctx, id)
}

// Analyze submits url for analysis and waits for the outcome. A failed
// analysis leaves the session in the error phase and is also returned.
func (c *Controller) Analyze(ctx context.Context, id, url string) (*State, error) {
	unlock := c.locks.Lock(id)
	state, err := c.store.Get(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	gen, err := state.BeginAnalyze(url)
	if err != nil {
		unlock()
		return nil, err
	}
	if err := c.save(ctx, state); err != nil {
		unlock()
		return nil, err
	}
	target, lang := state.URL, state.Language
	unlock()

	c.logger.Info("Analysis started",
		zap.String("session", id),
		zap.String("url", target),
		zap.Uint64("generation", gen),
	)

	result, analyzeErr := c.analyzer.Analyze(ctx, target, lang)

	final, applied, err := c.update(ctx, id, func(s *State) bool {
		if analyzeErr != nil {
			return s.FailAnalyze(gen, userMessage(analyzeErr))
		}
		return s.CompleteAnalyze(gen, result)
	})
	if err != nil {
		return nil, err
	}
	if applied && analyzeErr != nil {
		return final, analyzeErr
	}
	return final, nil
}

// ChangeLanguage switches the display language and re-translates the current
// report if there is one. Translation failures keep the previous report.
func (c *Controller) ChangeLanguage(ctx context.Context, id string, lang domain.Language) (*State, error) {
	unlock := c.locks.Lock(id)
	state, err := c.store.Get(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	change, err := state.ChangeLanguage(lang)
	if err != nil {
		unlock()
		return nil, err
	}
	if !change.Changed {
		unlock()
		return state, nil
	}
	if err := c.save(ctx, state); err != nil {
		unlock()
		return nil, err
	}
	target := state.Language
	unlock()

	if !change.Translate {
		return state, nil
	}

	translated, outcome := c.translator.Translate(ctx, change.Source, target)
	c.logger.Info("Translation finished",
		zap.String("session", id),
		zap.String("language", string(target)),
		zap.Bool("translated", outcome.Translated),
		zap.Bool("cached", outcome.Cached),
		zap.String("reason", outcome.Reason),
	)

	final, _, err := c.update(ctx, id, func(s *State) bool {
		return s.CompleteTranslate(change.Generation, translated)
	})
	if err != nil {
		return nil, err
	}
	return final, nil
}

func (c *Controller) Reset(ctx context.Context, id string) (*State, error) {
	final, _, err := c.update(ctx, id, func(s *State) bool {
		s.Reset()
		return true
	})
	return final, err
}

// update applies fn under the session lock and saves when fn reports a change.
func (c *Controller) update(ctx context.Context, id string, fn func(s *State) bool) (*State, bool, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	state, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !fn(state) {
		c.logger.Debug("Stale result discarded",
			zap.String("session", id),
			zap.String("phase", state.Phase.String()),
			zap.Uint64("generation", state.Generation),
		)
		return state, false, nil
	}
	if err := c.save(ctx, state); err != nil {
		return nil, false, err
	}
	return state, true, nil
}

func (c *Controller) save(ctx context.Context, state *State) error {
	state.Revision++
	state.UpdatedAt = c.now().UTC()
	if err := c.store.Save(ctx, state); err != nil {
		return err
	}
	c.hub.Publish(state)
	return nil
}

func userMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
