package rewardrequest

import (
	"context"
	"errors"
	"strings"
	"time"

	"smallbiznis-promotion/pkg/db"
	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/gen"
	"smallbiznis-promotion/pkg/metrics"
	"smallbiznis-promotion/services/condition"
	"smallbiznis-promotion/services/eventreward"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgNotFound             = "RewardRequest not found"
	MsgEventRewardNotFound  = "EventReward not found"
	MsgDuplicate            = "Duplicate reward request"
	MsgConditionNotMet      = "Event condition not met"
	MsgDispatchFailed       = "failed to dispatch reward grant"
	MsgDispatchOnlyApproved = "Only APPROVED requests can be dispatched"
)

// Dispatcher sends the grant for an approved request to the game authority.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *RewardRequest) error
}

type EventRewards interface {
	GetEventReward(ctx context.Context, id string) (*eventreward.EventReward, error)
}

type ConditionChecker interface {
	CheckUserEventCondition(ctx context.Context, eventID, userID string) (condition.Result, error)
}

type Service struct {
	repo         Repository
	eventRewards EventRewards
	conditions   ConditionChecker
	dispatcher   Dispatcher
	notifier     Notifier
	logger       *zap.Logger
	node         *snowflake.Node
}

type ServiceParams struct {
	fx.In

	Repository   Repository
	EventRewards EventRewards
	Conditions   ConditionChecker
	Dispatcher   Dispatcher
	Notifier     Notifier    `optional:"true"`
	Logger       *zap.Logger `optional:"true"`
	Node         *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := p.Notifier
	if notifier == nil {
		notifier = logNotifier{logger: logger}
	}
	return &Service{
		repo:         p.Repository,
		eventRewards: p.EventRewards,
		conditions:   p.Conditions,
		dispatcher:   p.Dispatcher,
		notifier:     notifier,
		logger:       logger,
		node:         p.Node,
	}
}

// Create files a PENDING request after checking, in order, that the event
// reward exists, that the user has no request for it yet, and that the user
// meets the event's condition.
func (s *Service) Create(ctx context.Context, eventRewardID, userID string) (*RewardRequest, error) {
	eventRewardID, userID = strings.TrimSpace(eventRewardID), strings.TrimSpace(userID)
	if eventRewardID == "" || userID == "" {
		return nil, errutil.ValidationFailed("eventRewardId and userId are required", nil)
	}

	link, err := s.eventRewards.GetEventReward(ctx, eventRewardID)
	if err != nil {
		if errutil.Is(err, errutil.StatusNotFound) {
			return nil, errutil.NotFound(MsgEventRewardNotFound, nil)
		}
		return nil, err
	}

	duplicate, err := s.repo.ExistsByEventRewardAndUser(ctx, eventRewardID, userID)
	if err != nil {
		return nil, errutil.Internal("failed to check reward request", err)
	}
	if duplicate {
		return nil, errutil.Conflict(MsgDuplicate, nil)
	}

	result, err := s.conditions.CheckUserEventCondition(ctx, link.EventID, userID)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errutil.UnprocessableEntity(MsgConditionNotMet, nil, errutil.WithData(result))
	}

	req := &RewardRequest{
		ID:            gen.ID(s.node),
		EventRewardID: eventRewardID,
		UserID:        userID,
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict(MsgDuplicate, err)
		}
		s.logger.Error("failed to create reward request", zap.Error(err))
		return nil, errutil.Internal("failed to create reward request", err)
	}

	s.logger.Info("reward request created",
		zap.String("reward_request_id", req.ID),
		zap.String("event_reward_id", eventRewardID),
		zap.String("user_id", userID),
	)
	s.notify(ctx, req, ActionCreate)
	return req, nil
}

func (s *Service) Get(ctx context.Context, id string) (*RewardRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errutil.NotFound(MsgNotFound, nil)
	}
	if err != nil {
		return nil, errutil.Internal("failed to load reward request", err)
	}
	return req, nil
}

// Approve commits PENDING -> APPROVED and then dispatches the grant. When the
// dispatch fails the request stays APPROVED and can be re-sent with Redispatch.
func (s *Service) Approve(ctx context.Context, id string) (*RewardRequest, error) {
	req, err := s.transition(ctx, id, ActionApprove, "", nil)
	if err != nil {
		return nil, err
	}
	if err := s.dispatch(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) Reject(ctx context.Context, id, reason string) (*RewardRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errutil.ValidationFailed(MsgReasonRequired, nil)
	}
	return s.transition(ctx, id, ActionReject, "", &reason)
}

// Process records that the authority has started granting.
func (s *Service) Process(ctx context.Context, id string) (*RewardRequest, error) {
	return s.transition(ctx, id, ActionProcess, "", nil)
}

// Result records the authority's final outcome. SUCCESS clears the reason;
// FAILED keeps it, defaulting to "unknown failure".
func (s *Service) Result(ctx context.Context, id string, status Status, reason string) (*RewardRequest, error) {
	status = Status(strings.ToUpper(strings.TrimSpace(string(status))))

	var r *string
	if status == StatusFailed {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = DefaultFailReason
		}
		r = &reason
	}
	return s.transition(ctx, id, ActionResult, status, r)
}

// Redispatch re-sends the grant of a request that is still APPROVED.
func (s *Service) Redispatch(ctx context.Context, id string) (*RewardRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusApproved {
		return nil, errutil.FailedPrecondition(MsgDispatchOnlyApproved, nil)
	}
	if err := s.dispatch(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) dispatch(ctx context.Context, req *RewardRequest) error {
	if err := s.dispatcher.Dispatch(ctx, req); err != nil {
		s.logger.Error("reward grant dispatch failed",
			zap.String("reward_request_id", req.ID),
			zap.Error(err),
		)
		return errutil.BadGateway(MsgDispatchFailed, err)
	}
	return nil
}

func (s *Service) transition(ctx context.Context, id string, action Action, outcome Status, reason *string) (*RewardRequest, error) {
	label := string(action)
	if action == ActionResult {
		label += "_" + strings.ToLower(string(outcome))
	}

	rule, err := Transition(action, outcome)
	if err != nil {
		return nil, err
	}

	applied, err := s.repo.Transition(ctx, id, rule.From, rule.To, reason)
	if err != nil {
		metrics.RecordTransition(label, "error")
		return nil, errutil.Internal("failed to update reward request", err)
	}
	if !applied {
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			metrics.RecordTransition(label, "error")
			return nil, errutil.Internal("failed to load reward request", err)
		}
		if !exists {
			metrics.RecordTransition(label, "not_found")
			return nil, errutil.NotFound(MsgNotFound, nil)
		}
		metrics.RecordTransition(label, "invalid_state")
		return nil, errutil.FailedPrecondition(rule.Message, nil)
	}
	metrics.RecordTransition(label, "applied")

	// A callback may already have moved the row on; report the change this
	// call applied, not whatever the row holds now.
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Status = rule.To
	req.Reason = reason

	s.logger.Info("reward request transitioned",
		zap.String("reward_request_id", id),
		zap.String("action", string(action)),
		zap.String("status", string(req.Status)),
	)
	s.notify(ctx, req, action)
	return req, nil
}

func (s *Service) notify(ctx context.Context, req *RewardRequest, action Action) {
	change := StatusChange{
		RewardRequestID: req.ID,
		EventRewardID:   req.EventRewardID,
		UserID:          req.UserID,
		Action:          action,
		Status:          req.Status,
		Reason:          req.Reason,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, change); err != nil {
		s.logger.Warn("failed to publish reward request status change",
			zap.String("reward_request_id", req.ID),
			zap.Error(err),
		)
	}
}
