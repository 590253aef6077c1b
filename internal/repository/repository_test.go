package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trivia-service/internal/apperr"
	"trivia-service/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sampleSession() *models.SessionState {
	return &models.SessionState{
		SessionID: "s-1",
		Config:    &models.QuizConfig{QuestionCount: 2, TimeLimitMinutes: 5, Difficulty: models.DifficultyEasy},
		Questions: []models.Question{
			{Text: "2+2?", Type: models.QuestionTypeMultiple, CorrectAnswer: "4", Answers: []string{"3", "4", "5", "22"}},
			{Text: "Sky is blue", Type: models.QuestionTypeBoolean, CorrectAnswer: "True", Answers: []string{"True", "False"}},
		},
		CurrentIndex: 1,
		Answers:      []models.AnswerRecord{{QuestionIndex: 0, Value: "4", AnsweredAtMs: 1_700_000_001_000}},
		StartedAtMs:  1_700_000_000_000,
	}
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Expected missing key to be not found, got found=%v err=%v", found, err)
	}
	if err := store.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	blob, found, err := store.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Expected key to be found, got found=%v err=%v", found, err)
	}
	if string(blob) != "v2" {
		t.Errorf("Expected v2, got %s", blob)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("Expected key to be gone after delete")
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesBlobs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	blob := []byte("abc")
	_ = store.Set(ctx, "k", blob)
	blob[0] = 'z'

	got, _, _ := store.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Expected stored blob to be isolated from caller, got %s", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	exerciseStore(t, store)
}

func TestKeys(t *testing.T) {
	if IdentityKey("alice") != "identity:alice" {
		t.Errorf("Unexpected identity key %s", IdentityKey("alice"))
	}
	if SessionKey("alice") != "session:alice" {
		t.Errorf("Unexpected session key %s", SessionKey("alice"))
	}
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewIdentityRepository(store)

	active, err := repo.Active(ctx)
	if err != nil || active != nil {
		t.Fatalf("Expected no active identity, got %v err=%v", active, err)
	}

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := repo.SaveActive(ctx, &models.Identity{Name: "alice", CreatedAt: created}); err != nil {
		t.Fatalf("SaveActive failed: %v", err)
	}
	active, err = repo.Active(ctx)
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if active == nil || active.Name != "alice" || !active.CreatedAt.Equal(created) {
		t.Errorf("Expected alice created at %v, got %+v", created, active)
	}

	_ = store.Set(ctx, SessionKey("alice"), []byte("{}"))
	if err := repo.ClearActive(ctx, "alice"); err != nil {
		t.Fatalf("ClearActive failed: %v", err)
	}
	if active, _ := repo.Active(ctx); active != nil {
		t.Errorf("Expected nobody logged in, got %+v", active)
	}
	if _, found, _ := store.Get(ctx, SessionKey("alice")); !found {
		t.Error("Expected the session key to survive logout")
	}
}

func TestIdentityRepositoryCorruptPointer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, ActiveIdentityKey, []byte("not json"))

	_, err := NewIdentityRepository(store).Active(ctx)
	if !apperr.IsKind(err, apperr.KindStoreCorrupt) {
		t.Errorf("Expected store_corrupt, got %v", err)
	}
}

func TestIdentityRepositoryDanglingPointer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, ActiveIdentityKey, []byte(`{"name":"ghost"}`))

	active, err := NewIdentityRepository(store).Active(ctx)
	if err != nil || active != nil {
		t.Errorf("Expected dangling pointer to read as logged out, got %v err=%v", active, err)
	}
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewMemoryStore())

	if state, err := repo.Load(ctx, "alice"); err != nil || state != nil {
		t.Fatalf("Expected no session, got %v err=%v", state, err)
	}

	saved := sampleSession()
	if err := repo.Save(ctx, "alice", saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := repo.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SessionID != saved.SessionID || loaded.StartedAtMs != saved.StartedAtMs {
		t.Errorf("Expected %s started at %d, got %s started at %d",
			saved.SessionID, saved.StartedAtMs, loaded.SessionID, loaded.StartedAtMs)
	}
	if len(loaded.Questions) != 2 || loaded.Questions[0].Answers[1] != "4" {
		t.Errorf("Expected answer order to be preserved, got %+v", loaded.Questions)
	}
	if len(loaded.Answers) != 1 || loaded.Answers[0].Value != "4" {
		t.Errorf("Unexpected answers %+v", loaded.Answers)
	}

	if other, _ := repo.Load(ctx, "bob"); other != nil {
		t.Error("Expected sessions to be scoped per identity")
	}

	if err := repo.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if state, _ := repo.Load(ctx, "alice"); state != nil {
		t.Error("Expected session to be gone after delete")
	}
}

func TestSessionRepositoryRejectsBadBlobs(t *testing.T) {
	broken := sampleSession()
	broken.Answers = append(broken.Answers, models.AnswerRecord{QuestionIndex: 5, Value: "x"})

	testCases := []struct {
		name  string
		write func(ctx context.Context, store Store, repo *SessionRepository)
	}{
		{"invalid json", func(ctx context.Context, store Store, _ *SessionRepository) {
			_ = store.Set(ctx, SessionKey("alice"), []byte("{\"questions\": ["))
		}},
		{"broken invariants", func(ctx context.Context, _ Store, repo *SessionRepository) {
			_ = repo.Save(ctx, "alice", broken)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			repo := NewSessionRepository(store)
			tc.write(ctx, store, repo)

			state, err := repo.Load(ctx, "alice")
			if state != nil {
				t.Errorf("Expected no state, got %+v", state)
			}
			if !apperr.IsKind(err, apperr.KindStoreCorrupt) {
				t.Errorf("Expected store_corrupt, got %v", err)
			}
		})
	}
}
