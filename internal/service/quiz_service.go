// internal/service/quiz_service.go
package service

import (
	"context"

	"trivia-service/internal/apperr"
	"trivia-service/internal/identity"
	"trivia-service/internal/logger"
	"trivia-service/internal/models"
	"trivia-service/internal/session"
	"trivia-service/internal/trivia"
)

// AnyCategory is offered first in the category list and is all that is left
// when the directory cannot be fetched.
var AnyCategory = models.Category{ID: 0, Name: "Any Category"}

type QuizService struct {
	Identity      *identity.Holder
	Machine       *session.Machine
	source        trivia.Source
	log           *logger.Logger
	clearOnLogout bool
}

func NewQuizService(
	holder *identity.Holder,
	machine *session.Machine,
	source trivia.Source,
	log *logger.Logger,
	clearOnLogout bool,
) *QuizService {
	s := &QuizService{
		Identity:      holder,
		Machine:       machine,
		source:        source,
		log:           log.With("service", "QuizService"),
		clearOnLogout: clearOnLogout,
	}
	holder.OnChange(func(ctx context.Context, current *models.Identity) {
		machine.Resume(ctx, current)
	})
	return s
}

func (s *QuizService) Ready() bool {
	return s.Identity.Ready()
}

func (s *QuizService) CurrentIdentity() *models.Identity {
	return s.Identity.Current()
}

// Login activates name and returns the session resumed for it.
func (s *QuizService) Login(ctx context.Context, name string) (*models.Identity, session.Snapshot, error) {
	id, err := s.Identity.Login(ctx, name)
	if err != nil {
		return nil, s.Machine.Snapshot(), err
	}
	return id, s.Machine.Snapshot(), nil
}

func (s *QuizService) Logout(ctx context.Context) error {
	if s.clearOnLogout && s.Identity.Current() != nil {
		if _, err := s.Machine.Reset(ctx); err != nil {
			s.log.Warn("Could not clear session on logout", "error", err)
		}
	}
	return s.Identity.Logout(ctx)
}

// Categories never fails: when the directory is unavailable only AnyCategory
// is returned and degraded is true.
func (s *QuizService) Categories(ctx context.Context) (categories []models.Category, degraded bool) {
	fetched, err := s.source.Categories(ctx)
	if err != nil {
		s.log.Warn("Category directory unavailable", "error", err)
		return []models.Category{AnyCategory}, true
	}
	return append([]models.Category{AnyCategory}, fetched...), false
}

// StartQuiz fetches questions for cfg and starts a session with them. Nothing
// changes when the fetch fails.
func (s *QuizService) StartQuiz(ctx context.Context, cfg models.QuizConfig) (session.Snapshot, error) {
	owner, err := s.requireIdentity()
	if err != nil {
		return s.Machine.Snapshot(), err
	}
	if err := cfg.Validate(); err != nil {
		return s.Machine.Snapshot(), err
	}
	if s.Machine.Status() == models.StatusInProgress {
		return s.Machine.Snapshot(), apperr.Invariant("quiz_in_progress", "A quiz is already in progress, reset it first")
	}

	s.Machine.SetLoading(true)
	questions, err := s.source.FetchQuestions(ctx, cfg)
	s.Machine.SetLoading(false)
	if err != nil {
		s.log.Warn("Question fetch failed", "owner", owner, "error", err)
		return s.Machine.Snapshot(), err
	}
	if s.Machine.Owner() != owner {
		return s.Machine.Snapshot(), apperr.Invariant("identity_changed", "The active user changed while loading questions")
	}
	return s.Machine.Start(ctx, cfg, questions)
}

// Answer records value. A non-nil index must match the current question.
func (s *QuizService) Answer(ctx context.Context, index *int, value string) (session.Snapshot, error) {
	if _, err := s.requireIdentity(); err != nil {
		return s.Machine.Snapshot(), err
	}
	if index != nil {
		return s.Machine.AnswerQuestion(ctx, *index, value)
	}
	return s.Machine.Answer(ctx, value)
}

// Resume reloads the active identity's session from the store.
func (s *QuizService) Resume(ctx context.Context) (session.Snapshot, error) {
	current := s.Identity.Current()
	if current == nil {
		return s.Machine.Snapshot(), apperr.Unauthenticated("Please log in first")
	}
	return s.Machine.Resume(ctx, current), nil
}

func (s *QuizService) Reset(ctx context.Context) (session.Snapshot, error) {
	if _, err := s.requireIdentity(); err != nil {
		return s.Machine.Snapshot(), err
	}
	return s.Machine.Reset(ctx)
}

func (s *QuizService) Snapshot() session.Snapshot {
	return s.Machine.Snapshot()
}

func (s *QuizService) Score() models.Score {
	return s.Machine.Score()
}

func (s *QuizService) Report() (models.QuizReport, error) {
	return s.Machine.Report()
}

func (s *QuizService) requireIdentity() (string, error) {
	current := s.Identity.Current()
	if current == nil {
		return "", apperr.Unauthenticated("Please log in first")
	}
	return current.Name, nil
}

// Subscribe streams session snapshots; see session.Machine.Subscribe.
func (s *QuizService) Subscribe() (<-chan session.Snapshot, func()) {
	return s.Machine.Subscribe()
}
