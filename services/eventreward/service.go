package eventreward

import (
	"context"
	"errors"
	"strings"

	"smallbiznis-promotion/pkg/cache"
	"smallbiznis-promotion/pkg/db"
	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/gen"
	"smallbiznis-promotion/pkg/rediskey"
	"smallbiznis-promotion/services/event"
	"smallbiznis-promotion/services/reward"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgNotFound       = "EventReward not found"
	MsgAlreadyLinked  = "This reward is already linked to the event."
	MsgEventNotExist  = "Event does not exist."
	MsgRewardNotExist = "Reward does not exist."
	MsgQtyNotPositive = "qty must be a positive integer"
	msgLinkFailed     = "failed to link reward"
)

type Service struct {
	repo    Repository
	events  event.Repository
	rewards reward.Repository
	cache   cache.Cache
	logger  *zap.Logger
	node    *snowflake.Node
}

type ServiceParams struct {
	fx.In

	Repository Repository
	Events     event.Repository
	Rewards    reward.Repository
	Cache      cache.Cache `optional:"true"`
	Logger     *zap.Logger `optional:"true"`
	Node       *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := p.Cache
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		repo:    p.Repository,
		events:  p.Events,
		rewards: p.Rewards,
		cache:   c,
		logger:  logger,
		node:    p.Node,
	}
}

type LinkRewardInput struct {
	EventID  string
	RewardID string
	Qty      int
}

// LinkReward attaches a reward to an event. The duplicate check runs before
// the existence checks.
func (s *Service) LinkReward(ctx context.Context, in LinkRewardInput) (*EventReward, error) {
	if strings.TrimSpace(in.EventID) == "" || strings.TrimSpace(in.RewardID) == "" {
		return nil, errutil.ValidationFailed("eventId and rewardId are required", nil)
	}

	linked, err := s.repo.ExistsByEventAndReward(ctx, in.EventID, in.RewardID)
	if err != nil {
		return nil, errutil.Internal(msgLinkFailed, err)
	}
	if linked {
		return nil, errutil.Conflict(MsgAlreadyLinked, nil)
	}

	ok, err := s.events.Exists(ctx, in.EventID)
	if err != nil {
		return nil, errutil.Internal(msgLinkFailed, err)
	}
	if !ok {
		return nil, errutil.NotFound(MsgEventNotExist, nil)
	}

	if _, err := s.rewards.GetByID(ctx, in.RewardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound(MsgRewardNotExist, nil)
		}
		return nil, errutil.Internal(msgLinkFailed, err)
	}

	if in.Qty <= 0 {
		return nil, errutil.ValidationFailed(MsgQtyNotPositive, nil)
	}

	link := &EventReward{
		ID:       gen.ID(s.node),
		EventID:  in.EventID,
		RewardID: in.RewardID,
		Qty:      in.Qty,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict(MsgAlreadyLinked, err)
		}
		s.logger.Error(msgLinkFailed, zap.Error(err))
		return nil, errutil.Internal(msgLinkFailed, err)
	}

	s.logger.Info("reward linked to event",
		zap.String("event_reward_id", link.ID),
		zap.String("event_id", link.EventID),
		zap.String("reward_id", link.RewardID),
		zap.Int("qty", link.Qty),
	)
	return link, nil
}

func (s *Service) GetEventReward(ctx context.Context, id string) (*EventReward, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errutil.ValidationFailed("eventRewardId is required", nil)
	}

	return cache.UseCache(ctx, s.cache, "event_reward", rediskey.EventReward(id), func(ctx context.Context) (*EventReward, error) {
		link, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound(MsgNotFound, nil)
		}
		if err != nil {
			return nil, errutil.Internal("failed to load event reward", err)
		}
		return link, nil
	})
}
