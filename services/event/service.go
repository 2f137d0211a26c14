package event

import (
	"context"
	"errors"
	"strings"
	"time"

	"smallbiznis-promotion/pkg/cache"
	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/gen"
	"smallbiznis-promotion/pkg/rediskey"
	"smallbiznis-promotion/services/condition"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MsgNotFound      = "Event not found"
	MsgNotInProgress = "Event is not active or not in progress"
)

// Service owns events and answers whether a user satisfies an event's condition.
type Service struct {
	repo      Repository
	evaluator *condition.Evaluator
	cache     cache.Cache
	logger    *zap.Logger
	node      *snowflake.Node
	now       func() time.Time
}

// ServiceParams defines dependencies for Service construction.
type ServiceParams struct {
	fx.In

	Repository Repository
	Evaluator  *condition.Evaluator
	Cache      cache.Cache `optional:"true"`
	Logger     *zap.Logger `optional:"true"`
	Node       *snowflake.Node
	Clock      func() time.Time `name:"clock" optional:"true"`
}

// NewService constructs a new Service instance.
func NewService(p ServiceParams) *Service {
	if p.Repository == nil {
		panic("event service requires repository dependency")
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := p.Clock
	if now == nil {
		now = time.Now
	}
	c := p.Cache
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		repo:      p.Repository,
		evaluator: p.Evaluator,
		cache:     c,
		logger:    logger,
		node:      p.Node,
		now:       now,
	}
}

// CreateEventInput carries the fields of a new event.
type CreateEventInput struct {
	Title       string
	Description string
	StartedAt   time.Time
	EndedAt     time.Time
	IsActive    bool
	Condition   condition.Node
}

// CreateEvent validates the condition tree and stores the event. An event is
// never stored with an invalid condition.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errutil.ValidationFailed("title is required", nil)
	}
	if in.StartedAt.IsZero() || in.EndedAt.IsZero() {
		return nil, errutil.ValidationFailed("startedAt and endedAt are required", nil)
	}
	if !in.EndedAt.After(in.StartedAt) {
		return nil, errutil.ValidationFailed("endedAt must be after startedAt", nil)
	}
	if err := condition.Validate(in.Condition); err != nil {
		return nil, err
	}

	event := &Event{
		ID:          gen.ID(s.node),
		Title:       in.Title,
		Description: in.Description,
		StartedAt:   in.StartedAt.UTC(),
		EndedAt:     in.EndedAt.UTC(),
		IsActive:    in.IsActive,
		Condition:   datatypes.NewJSONType(in.Condition),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("failed to create event", zap.Error(err))
		return nil, errutil.Internal("failed to create event", err)
	}

	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("condition", in.Condition.String()),
	)
	return event, nil
}

// GetEvent returns the event with the given id.
func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errutil.ValidationFailed("eventId is required", nil)
	}

	return cache.UseCache(ctx, s.cache, "event", rediskey.Event(id), func(ctx context.Context) (*Event, error) {
		event, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound(MsgNotFound, nil)
		}
		if err != nil {
			return nil, errutil.Internal("failed to load event", err)
		}
		return event, nil
	})
}

// CheckUserEventCondition evaluates the event's condition for userID. An
// event that is inactive or outside its window is not met without querying
// the game authority.
func (s *Service) CheckUserEventCondition(ctx context.Context, eventID, userID string) (condition.Result, error) {
	if strings.TrimSpace(userID) == "" {
		return condition.Result{}, errutil.ValidationFailed("userId is required", nil)
	}

	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return condition.Result{}, err
	}

	if !event.InProgress(s.now()) {
		return condition.Result{
			Success: false,
			Detail:  condition.Detail{Reason: MsgNotInProgress},
		}, nil
	}

	res, err := s.evaluator.Evaluate(ctx, event.Condition.Data(), userID)
	if err != nil {
		s.logger.Warn("condition evaluation failed",
			zap.String("event_id", eventID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return condition.Result{}, err
	}
	return res, nil
}
