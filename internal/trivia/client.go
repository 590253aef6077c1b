package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"trivia-service/internal/apperr"
	"trivia-service/internal/logger"
	"trivia-service/internal/models"

	"github.com/facebookgo/clock"
	"golang.org/x/sync/singleflight"
)

const (
	msgFetchFailed  = "Could not fetch questions. Please try different settings."
	msgNetworkError = "Network error. Please check your connection."
)

// Open Trivia DB response codes.
const (
	codeSuccess      = 0
	codeNoResults    = 1
	codeInvalidParam = 2
	codeRateLimit    = 5
)

// Source is where quiz questions and the category directory come from.
type Source interface {
	FetchQuestions(ctx context.Context, cfg models.QuizConfig) ([]models.Question, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	CategoryTTL time.Duration
}

type Client struct {
	log         *logger.Logger
	baseURL     string
	httpClient  *http.Client
	categoryTTL time.Duration
	clock       clock.Clock
	group       singleflight.Group

	rngMu sync.Mutex
	rng   *rand.Rand

	cacheMu    sync.RWMutex
	categories []models.Category
	fetchedAt  time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRand fixes the source used to shuffle answer choices.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) { c.rng = r }
}

func WithClock(cl clock.Clock) Option {
	return func(c *Client) { c.clock = cl }
}

func New(log *logger.Logger, cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://opentdb.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		log:         log.With("client", "TriviaClient"),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		categoryTTL: cfg.CategoryTTL,
		clock:       clock.New(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []models.Category `json:"trivia_categories"`
}

// FetchQuestions makes a single request for cfg.QuestionCount questions.
// Text is HTML-decoded and the answer choices are shuffled once, here.
func (c *Client) FetchQuestions(ctx context.Context, cfg models.QuizConfig) ([]models.Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(cfg.QuestionCount))
	if cfg.Category > 0 {
		params.Set("category", strconv.Itoa(cfg.Category))
	}
	if cfg.Difficulty != models.DifficultyAny {
		params.Set("difficulty", string(cfg.Difficulty))
	}
	if cfg.QuestionType != models.QuestionTypeAny {
		params.Set("type", string(cfg.QuestionType))
	}

	var resp questionsResponse
	if err := c.getJSON(ctx, "/api.php?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	switch resp.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, apperr.SourceUnavailable("no_results", msgFetchFailed, nil)
	case codeInvalidParam:
		return nil, apperr.SourceUnavailable("invalid_parameter", msgFetchFailed, nil)
	case codeRateLimit:
		return nil, apperr.SourceUnavailable("rate_limited", msgFetchFailed, nil)
	default:
		return nil, apperr.SourceUnavailable("source_rejected", msgFetchFailed,
			fmt.Errorf("response_code %d", resp.ResponseCode))
	}
	if len(resp.Results) == 0 {
		return nil, apperr.SourceUnavailable("no_results", msgFetchFailed, nil)
	}

	questions := make([]models.Question, 0, len(resp.Results))
	for _, r := range resp.Results {
		questions = append(questions, c.toQuestion(r))
	}
	c.log.Debug("Fetched questions", "requested", cfg.QuestionCount, "received", len(questions))
	return questions, nil
}

// Categories returns the category directory, served from memory while the
// cached copy is younger than the configured TTL. Concurrent misses share a
// single request.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	if cached, ok := c.cachedCategories(); ok {
		return cached, nil
	}

	// The shared fetch outlives any one caller; the http client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("categories", func() (interface{}, error) {
		if cached, ok := c.cachedCategories(); ok {
			return cached, nil
		}
		var resp categoriesResponse
		if err := c.getJSON(fetchCtx, "/api_category.php", &resp); err != nil {
			return nil, err
		}
		c.cacheMu.Lock()
		c.categories = resp.TriviaCategories
		c.fetchedAt = c.clock.Now()
		c.cacheMu.Unlock()
		c.log.Debug("Fetched categories", "count", len(resp.TriviaCategories))
		return resp.TriviaCategories, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperr.SourceUnavailable("network", msgNetworkError, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]models.Category(nil), res.Val.([]models.Category)...), nil
	}
}

func (c *Client) cachedCategories() ([]models.Category, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	if c.categories == nil || c.categoryTTL <= 0 {
		return nil, false
	}
	if c.clock.Now().Sub(c.fetchedAt) >= c.categoryTTL {
		return nil, false
	}
	return append([]models.Category(nil), c.categories...), true
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperr.SourceUnavailable("network", msgNetworkError, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Trivia request failed", "path", path, "error", err)
		return apperr.SourceUnavailable("network", msgNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperr.SourceUnavailable("rate_limited", msgFetchFailed, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.log.Warn("Trivia request rejected", "path", path, "status", resp.StatusCode)
		return apperr.SourceUnavailable("upstream_status", msgNetworkError, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.SourceUnavailable("bad_response", msgNetworkError, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (c *Client) toQuestion(r apiQuestion) models.Question {
	correct := html.UnescapeString(r.CorrectAnswer)
	answers := make([]string, 0, len(r.IncorrectAnswers)+1)
	for _, a := range r.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(a))
	}
	answers = append(answers, correct)

	c.rngMu.Lock()
	c.rng.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	c.rngMu.Unlock()

	return models.Question{
		Text:          html.UnescapeString(r.Question),
		Category:      html.UnescapeString(r.Category),
		Difficulty:    models.Difficulty(r.Difficulty),
		Type:          models.QuestionType(r.Type),
		CorrectAnswer: correct,
		Answers:       answers,
	}
}
