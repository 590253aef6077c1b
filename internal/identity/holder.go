package identity

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"trivia-service/internal/apperr"
	"trivia-service/internal/event"
	"trivia-service/internal/logger"
	"trivia-service/internal/models"
	"trivia-service/internal/repository"

	"github.com/facebookgo/clock"
)

const MinNameLength = 3

// Listener is told about every identity change. current is nil after logout.
type Listener func(ctx context.Context, current *models.Identity)

type Holder struct {
	// opMu serialises login, logout and restore so listeners observe changes
	// in the order they were made.
	opMu sync.Mutex

	mu        sync.RWMutex
	current   *models.Identity
	ready     bool
	listeners []Listener

	repo      *repository.IdentityRepository
	log       *logger.Logger
	publisher event.Publisher
	clock     clock.Clock
}

type Option func(*Holder)

func WithPublisher(p event.Publisher) Option {
	return func(h *Holder) { h.publisher = p }
}

func WithClock(c clock.Clock) Option {
	return func(h *Holder) { h.clock = c }
}

func NewHolder(repo *repository.IdentityRepository, log *logger.Logger, opts ...Option) *Holder {
	h := &Holder{
		repo:      repo,
		log:       log.With("component", "IdentityHolder"),
		publisher: event.NewLogPublisher(logger.Nop()),
		clock:     clock.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ValidateName trims name and checks it is long enough to log in with.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperr.Validation("name_required", "Please enter your name")
	}
	if utf8.RuneCountInString(trimmed) < MinNameLength {
		return "", apperr.Validation("name_too_short", "Name must be at least 3 characters")
	}
	return trimmed, nil
}

// OnChange registers l. Listeners run synchronously, in registration order,
// outside the holder's lock.
func (h *Holder) OnChange(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

func (h *Holder) Login(ctx context.Context, name string) (*models.Identity, error) {
	trimmed, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	h.opMu.Lock()
	defer h.opMu.Unlock()

	identity := &models.Identity{Name: trimmed, CreatedAt: h.clock.Now().UTC()}
	h.mu.Lock()
	prev := h.current
	h.current = identity
	h.mu.Unlock()

	if err := h.repo.SaveActive(ctx, identity); err != nil {
		h.log.Error("Failed to persist identity", "name", trimmed, "error", err)
	}
	if prev != nil && prev.Name != trimmed {
		if err := h.repo.DeleteRecord(ctx, prev.Name); err != nil {
			h.log.Error("Failed to remove replaced identity", "name", prev.Name, "error", err)
		}
	}
	h.log.Info("Logged in", "name", trimmed)
	h.publish(event.IdentityLogin, identity.Name)
	h.notify(ctx, identity)

	out := *identity
	return &out, nil
}

// Logout clears the active identity. The identity's quiz session is left in
// the store. Logging out with nobody logged in is a no-op.
func (h *Holder) Logout(ctx context.Context) error {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	h.mu.Lock()
	prev := h.current
	h.current = nil
	h.mu.Unlock()

	if prev == nil {
		return nil
	}
	if err := h.repo.ClearActive(ctx, prev.Name); err != nil {
		h.log.Error("Failed to clear persisted identity", "name", prev.Name, "error", err)
	}
	h.log.Info("Logged out", "name", prev.Name)
	h.publish(event.IdentityLogout, prev.Name)
	h.notify(ctx, nil)
	return nil
}

// RestoreOnStartup reactivates the persisted identity, if any. The holder
// becomes ready whatever the outcome; unreadable data counts as logged out.
func (h *Holder) RestoreOnStartup(ctx context.Context) error {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	identity, err := h.repo.Active(ctx)
	if err != nil {
		if apperr.IsKind(err, apperr.KindStoreCorrupt) {
			h.log.Warn("Discarding unreadable identity", "error", err)
			err = nil
		} else {
			h.log.Error("Failed to read persisted identity", "error", err)
		}
		identity = nil
	}

	h.mu.Lock()
	restored := identity != nil && h.current == nil
	if restored {
		h.current = identity
	}
	h.ready = true
	h.mu.Unlock()

	if restored {
		h.log.Info("Restored identity", "name", identity.Name)
		h.notify(ctx, identity)
	}
	return err
}

func (h *Holder) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Current returns a copy of the active identity, or nil.
func (h *Holder) Current() *models.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil
	}
	out := *h.current
	return &out
}

func (h *Holder) notify(ctx context.Context, identity *models.Identity) {
	h.mu.RLock()
	listeners := append([]Listener(nil), h.listeners...)
	h.mu.RUnlock()

	for _, l := range listeners {
		if identity == nil {
			l(ctx, nil)
			continue
		}
		cp := *identity
		l(ctx, &cp)
	}
}

func (h *Holder) publish(eventType, name string) {
	if err := h.publisher.Publish(eventType, map[string]string{"name": name}); err != nil {
		h.log.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
