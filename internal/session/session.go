package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fystack/lottery-simulator/internal/budget"
	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/internal/history"
	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/sampler"
	"github.com/fystack/lottery-simulator/pkg/common/enum"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/events"
	"github.com/fystack/lottery-simulator/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAgeNotConfirmed    = errors.New("age not confirmed")
	ErrDreamInFlight      = errors.New("a dream interpretation is already running")
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrEmptyBatch         = errors.New("nothing to save")
	ErrTooManyGames       = errors.New("budget row exceeds the materialize limit")
)

const DefaultMaxMaterialize = 1000

type User struct {
	Email string `json:"email"`
}

type Deps struct {
	Catalog     lottery.Catalog
	Store       *history.Store
	Sampler     *sampler.Sampler
	Interpreter dream.Interpreter
	Emitter     events.Emitter
	Capacity    int
	// MaxMaterialize bounds how many games one budget row may draw.
	MaxMaterialize int64
	Now            func() time.Time
}

// Session owns the state of one user: history, age gate, login and the
// pending dream call. History mutations are persisted before returning.
type Session struct {
	catalog     lottery.Catalog
	store       *history.Store
	sampler     *sampler.Sampler
	allocator   *budget.Allocator
	interpreter dream.Interpreter
	emitter     events.Emitter
	now         func() time.Time
	maxGames    int64

	mu      sync.Mutex
	log     *history.Log
	isAdult bool
	user    *User

	dreaming atomic.Bool
}

func New(d Deps) *Session {
	if d.Catalog == nil {
		d.Catalog = lottery.DefaultCatalog()
	}
	if d.Sampler == nil {
		d.Sampler = sampler.New(nil)
	}
	if d.Emitter == nil {
		d.Emitter = events.NewNoopEmitter()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxMaterialize <= 0 {
		d.MaxMaterialize = DefaultMaxMaterialize
	}
	return &Session{
		catalog:     d.Catalog,
		store:       d.Store,
		sampler:     d.Sampler,
		allocator:   budget.NewAllocator(d.Sampler),
		interpreter: d.Interpreter,
		emitter:     d.Emitter,
		now:         d.Now,
		maxGames:    d.MaxMaterialize,
		log:         history.NewLog(d.Capacity),
	}
}

// Start loads the persisted history and age flag.
func (s *Session) Start(ctx context.Context) error {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	adult, err := s.store.AgeConfirmed(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Replace(entries)
	s.isAdult = adult
	metrics.SetHistorySize(s.log.Len())
	logger.Info("Session started", "history", s.log.Len(), "age_confirmed", adult)
	return nil
}

func (s *Session) Catalog() lottery.Catalog {
	return s.catalog
}

func (s *Session) requireAdult() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdult {
		return ErrAgeNotConfirmed
	}
	return nil
}

// Generate draws a preview combination. It is not saved.
func (s *Session) Generate(t enum.LotteryType, count int, fixed []int) (lottery.Combination, error) {
	if err := s.requireAdult(); err != nil {
		return lottery.Combination{}, err
	}
	p, err := s.catalog.Get(t)
	if err != nil {
		return lottery.Combination{}, err
	}
	numbers, err := s.sampler.Generate(p, count, fixed)
	if err != nil {
		return lottery.Combination{}, err
	}
	return lottery.NewCombination(p, numbers, p.CostFor(count), enum.SourceGenerator, s.now()), nil
}

// Save validates the batch, prepends it to the history and persists the result.
// Missing ids and timestamps are filled in place.
func (s *Session) Save(ctx context.Context, batch ...lottery.Combination) error {
	if err := s.requireAdult(); err != nil {
		return err
	}
	return s.save(ctx, batch)
}

func (s *Session) save(ctx context.Context, batch []lottery.Combination) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}
	for i := range batch {
		p, err := s.catalog.Get(batch[i].LotteryType)
		if err != nil {
			return err
		}
		if batch[i].ID == "" {
			batch[i].ID = uuid.NewString()
		}
		if batch[i].Timestamp == 0 {
			batch[i].Timestamp = s.now().UnixMilli()
		}
		if batch[i].Source == "" {
			batch[i].Source = enum.SourceGenerator
		}
		if err := batch[i].Validate(p); err != nil {
			return err
		}
		// Budget rows carry the price they were planned with; the rest
		// are priced from the table.
		if batch[i].Source != enum.SourceBudget {
			batch[i].Cost = batch[i].ListPrice(p)
		}
		if err := batch[i].ValidateCost(p); err != nil {
			return err
		}
	}

	s.mu.Lock()
	previous := s.log.Entries()
	s.log.Append(batch...)
	entries := s.log.Entries()
	if err := s.store.Save(ctx, entries); err != nil {
		s.log.Replace(previous)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	metrics.SetHistorySize(len(entries))
	for _, c := range batch {
		metrics.RecordSaved(string(c.LotteryType), string(c.Source), 1)
	}
	event := events.HistorySavedEvent{
		BatchID:      uuid.NewString(),
		Combinations: batch,
		HistorySize:  len(entries),
		Timestamp:    s.now().UnixMilli(),
	}
	if err := s.emitter.EmitHistorySaved(event); err != nil {
		logger.Warn("Failed to emit history event", "batch", event.BatchID, "error", err)
	}
	return nil
}

func (s *Session) SimulateBudget(t enum.LotteryType, amount decimal.Decimal) ([]budget.Row, error) {
	if err := s.requireAdult(); err != nil {
		return nil, err
	}
	p, err := s.catalog.Get(t)
	if err != nil {
		return nil, err
	}
	return budget.Simulate(p, amount), nil
}

// MaterializeBudget recomputes the plan for amount, draws the row for the
// given ticket size and saves every combination.
func (s *Session) MaterializeBudget(ctx context.Context, t enum.LotteryType, amount decimal.Decimal, numbers int) ([]lottery.Combination, error) {
	rows, err := s.SimulateBudget(t, amount)
	if err != nil {
		return nil, err
	}
	row, err := budget.Find(rows, numbers)
	if err != nil {
		return nil, err
	}
	if row.Quantity <= 0 || row.Quantity > s.maxGames {
		return nil, fmt.Errorf("%w: %d games, limit %d", ErrTooManyGames, row.Quantity, s.maxGames)
	}
	p, err := s.catalog.Get(t)
	if err != nil {
		return nil, err
	}
	combos, err := s.allocator.Materialize(p, row)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, combos); err != nil {
		return nil, err
	}
	return combos, nil
}

// InterpretDream runs one dream call. A second call while one is pending
// fails with ErrDreamInFlight.
func (s *Session) InterpretDream(ctx context.Context, text string) (*dream.Interpretation, error) {
	if err := s.requireAdult(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, dream.ErrEmptyDream
	}
	if s.interpreter == nil {
		return nil, dream.ErrMissingCredential
	}
	if !s.dreaming.CompareAndSwap(false, true) {
		return nil, ErrDreamInFlight
	}
	defer s.dreaming.Store(false)

	start := time.Now()
	in, err := s.interpreter.Interpret(ctx, text)
	metrics.RecordDream(dreamOutcome(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return in, nil
}

func dreamOutcome(err error) string {
	var (
		upstream *dream.UpstreamError
		raw      *dream.RawResponseError
		invalid  *dream.ValidationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.As(err, &raw):
		return "raw"
	case errors.As(err, &invalid), errors.Is(err, dream.ErrMalformedResponse):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}

// SaveDreamSuggestion stores numbers suggested for t as a dream combination.
func (s *Session) SaveDreamSuggestion(ctx context.Context, t enum.LotteryType, numbers []int) (lottery.Combination, error) {
	if err := s.requireAdult(); err != nil {
		return lottery.Combination{}, err
	}
	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	in := &dream.Interpretation{Suggestions: map[enum.LotteryType][]int{t: sorted}}
	c, err := dream.Project(in, t, s.catalog, s.now())
	if err != nil {
		return lottery.Combination{}, err
	}
	if err := s.save(ctx, []lottery.Combination{c}); err != nil {
		return lottery.Combination{}, err
	}
	return c, nil
}

func (s *Session) History() []lottery.Combination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	removed := s.log.Len()
	previous := s.log.Entries()
	s.log.Clear()
	if err := s.store.Save(ctx, nil); err != nil {
		s.log.Replace(previous)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	metrics.SetHistorySize(0)
	if err := s.emitter.EmitHistoryCleared(events.HistoryClearedEvent{Removed: removed, Timestamp: s.now().UnixMilli()}); err != nil {
		logger.Warn("Failed to emit history event", "error", err)
	}
	return nil
}

func (s *Session) ConfirmAge(ctx context.Context, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetAgeConfirmed(ctx, confirmed); err != nil {
		return err
	}
	s.isAdult = confirmed
	return nil
}

func (s *Session) AgeConfirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdult
}

// Login accepts any non-empty email and password. Nothing is verified.
func (s *Session) Login(email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	u := User{Email: email}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}
