package event

import (
	"sync"
	"testing"

	"trivia-service/internal/logger"
)

func TestRecorderConcurrentPublish(t *testing.T) {
	rec := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rec.Publish(AnswerRecorded, map[string]int{"index": 0})
		}()
	}
	wg.Wait()

	if got := rec.Count(AnswerRecorded); got != 20 {
		t.Errorf("Expected 20 events, got %d", got)
	}
	if got := rec.Count(SessionStarted); got != 0 {
		t.Errorf("Expected 0 start events, got %d", got)
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	rec := &Recorder{}
	_ = rec.Publish(SessionStarted, nil)
	_ = rec.Publish(AnswerRecorded, nil)
	_ = rec.Publish(SessionCompleted, nil)

	expected := []string{SessionStarted, AnswerRecorded, SessionCompleted}
	got := rec.Types()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected event %d to be %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestLogPublisherNeverFails(t *testing.T) {
	p := NewLogPublisher(logger.Nop())
	if err := p.Publish(IdentityLogin, map[string]string{"name": "alice"}); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
