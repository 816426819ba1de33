package memo

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"trip-memo/domain"
)

// Remote performs the password-gated mutations. A false result with a nil
// error means the password was rejected.
type Remote interface {
	CreateMemo(ctx context.Context, req domain.CreateMemoRequest) (bool, error)
	DeleteMemo(ctx context.Context, req domain.DeleteMemoRequest) (bool, error)
	DeleteSpot(ctx context.Context, req domain.DeleteSpotRequest) (bool, error)
}

// Cache is the keyed fetch cache shared by every view of a list.
type Cache interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, key string) error
}

// Outcome is the result of a mutation attempt.
type Outcome int

const (
	// OutcomeSkipped means nothing was sent: invalid input or the same
	// operation is already in flight.
	OutcomeSkipped Outcome = iota
	OutcomeApplied
	OutcomeRejected
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Config holds the collaborators of a Controller.
type Config struct {
	PlanID   string
	SpotID   int
	Password *string
	Remote   Remote
	Cache    Cache
	Reporter Reporter
	Logger   *log.Logger
	// OnClose runs once when the controller is closed, including after the
	// spot was deleted.
	OnClose func()
}

// Controller coordinates memo and spot mutations for one spot. Each
// controller owns its state; late responses after Close are discarded.
type Controller struct {
	planID   string
	spotID   int
	remote   Remote
	cache    Cache
	reporter Reporter
	log      *log.Entry
	onClose  func()

	mu       sync.Mutex
	state    State
	password *string
	inflight map[Operation]bool
	closed   bool
}

// NewController creates a controller in the initial state.
func NewController(cfg Config) *Controller {
	if cfg.Remote == nil || cfg.Cache == nil {
		panic("memo.NewController: remote and cache are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = LogReporter{Logger: logger}
	}
	return &Controller{
		planID:   cfg.PlanID,
		spotID:   cfg.SpotID,
		remote:   cfg.Remote,
		cache:    cfg.Cache,
		reporter: reporter,
		log:      logger.WithFields(log.Fields{"plan_id": cfg.PlanID, "spot_id": cfg.SpotID}),
		onClose:  cfg.OnClose,
		password: cfg.Password,
		inflight: make(map[Operation]bool),
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a UI event.
func (c *Controller) Dispatch(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = Reduce(c.state, a)
}

// Closed reports whether the controller has been closed.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close detaches the controller from its state. Later dispatches are inert.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	onClose := c.onClose
	c.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// Reauthorize stores a newly entered password and closes the password
// prompt. The caller re-issues the rejected operation afterwards.
func (c *Controller) Reauthorize(password string) {
	c.mu.Lock()
	c.password = &password
	c.mu.Unlock()
	c.Dispatch(ClosePasswordPrompt{})
}

// MemoListKey is the cache key of this spot's memo list.
func (c *Controller) MemoListKey() string {
	return domain.MemoListKey(c.planID, c.spotID)
}

// SpotListKey is the cache key of the plan's spot list.
func (c *Controller) SpotListKey() string {
	return domain.SpotListKey(c.planID)
}

// Memos reads the memo list through the cache.
func (c *Controller) Memos(ctx context.Context) ([]domain.Memo, error) {
	data, err := c.cache.Fetch(ctx, c.MemoListKey())
	if err != nil {
		return nil, fmt.Errorf("read memos: %w", err)
	}
	memos := []domain.Memo{}
	if err := sonic.Unmarshal(data, &memos); err != nil {
		return nil, fmt.Errorf("decode memos: %w", err)
	}
	return memos, nil
}

// Spots reads the plan's spot list through the cache.
func (c *Controller) Spots(ctx context.Context) ([]domain.Spot, error) {
	data, err := c.cache.Fetch(ctx, c.SpotListKey())
	if err != nil {
		return nil, fmt.Errorf("read spots: %w", err)
	}
	spots := []domain.Spot{}
	if err := sonic.Unmarshal(data, &spots); err != nil {
		return nil, fmt.Errorf("decode spots: %w", err)
	}
	return spots, nil
}

// CreateMemo submits the draft. Empty or over-long drafts are not sent.
func (c *Controller) CreateMemo(ctx context.Context) Outcome {
	st := c.State()
	if !domain.ValidMemoText(st.MemoText) {
		return OutcomeSkipped
	}
	return c.run(ctx, OpCreateMemo, mutation{
		call: func(ctx context.Context, password *string) (bool, error) {
			return c.remote.CreateMemo(ctx, domain.CreateMemoRequest{
				Password: password,
				PlanID:   c.planID,
				SpotID:   c.spotID,
				Text:     st.MemoText,
				Mark:     st.Mark,
			})
		},
		keys:     []string{c.MemoListKey()},
		applied:  []Action{CreateMemoSuccess{}},
		rejected: CreateMemoFailed{},
	})
}

// DeleteMemo deletes the memo selected with SelectDeleteTarget.
func (c *Controller) DeleteMemo(ctx context.Context) Outcome {
	st := c.State()
	if !st.TargetSelected {
		return OutcomeSkipped
	}
	return c.run(ctx, OpDeleteMemo, mutation{
		call: func(ctx context.Context, password *string) (bool, error) {
			return c.remote.DeleteMemo(ctx, domain.DeleteMemoRequest{
				Password: password,
				PlanID:   c.planID,
				SpotID:   c.spotID,
				MemoID:   st.TargetMemoID,
			})
		},
		keys:     []string{c.MemoListKey()},
		applied:  []Action{CloseMemoConfirm{}, SetLoading{Pending: false}},
		rejected: DeleteMemoFailed{},
	})
}

// DeleteSpot deletes the spot. On success the controller closes itself since
// there is nothing left to show.
func (c *Controller) DeleteSpot(ctx context.Context) Outcome {
	outcome := c.run(ctx, OpDeleteSpot, mutation{
		call: func(ctx context.Context, password *string) (bool, error) {
			return c.remote.DeleteSpot(ctx, domain.DeleteSpotRequest{
				Password: password,
				PlanID:   c.planID,
				SpotID:   c.spotID,
			})
		},
		keys:     []string{c.SpotListKey()},
		applied:  []Action{CloseSpotConfirm{}, SetLoading{Pending: false}},
		rejected: DeleteSpotFailed{},
	})
	if outcome == OutcomeApplied {
		c.Close()
	}
	return outcome
}

type mutation struct {
	call     func(ctx context.Context, password *string) (bool, error)
	keys     []string
	applied  []Action
	rejected Action
}

func (c *Controller) begin(op Operation) (*string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[op] {
		return nil, false
	}
	c.inflight[op] = true
	return c.password, true
}

func (c *Controller) end(op Operation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, op)
}

func (c *Controller) run(ctx context.Context, op Operation, m mutation) Outcome {
	password, ok := c.begin(op)
	if !ok {
		return OutcomeSkipped
	}
	defer c.end(op)

	logger := c.log.WithField("op", op)
	c.Dispatch(SetLoading{Pending: true})

	applied, err := m.call(ctx, password)
	if err != nil {
		opErr := classify(op, err)
		logger.WithError(err).Debug("mutation failed")
		c.Dispatch(SetLoading{Pending: false})
		c.reporter.Report(opErr)
		return OutcomeFailed
	}
	if !applied {
		logger.Info("password rejected")
		c.Dispatch(m.rejected)
		return OutcomeRejected
	}

	for _, key := range m.keys {
		if err := c.cache.Invalidate(ctx, key); err != nil {
			logger.WithError(err).WithField("key", key).Warn("cache invalidation failed")
		}
	}
	for _, a := range m.applied {
		c.Dispatch(a)
	}
	logger.Debug("mutation applied")
	return OutcomeApplied
}
