package reward

import (
	"context"
	"errors"
	"strings"

	"smallbiznis-promotion/pkg/cache"
	"smallbiznis-promotion/pkg/db"
	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/gen"
	"smallbiznis-promotion/pkg/rediskey"
	"smallbiznis-promotion/pkg/taskname"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgNotFound  = "Reward not found"
	MsgDuplicate = "Reward with the same type and name already exists"
)

type Service struct {
	repo   Repository
	cache  cache.Cache
	logger *zap.Logger
	node   *snowflake.Node
}

type ServiceParams struct {
	fx.In

	Repository Repository
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
	return &Service{repo: p.Repository, cache: c, logger: logger, node: p.Node}
}

type CreateRewardInput struct {
	Type         string
	Name         string
	Description  string
	GrantCommand string
}

func (s *Service) CreateReward(ctx context.Context, in CreateRewardInput) (*Reward, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Type == "":
		return nil, errutil.ValidationFailed("type is required", nil)
	case in.Name == "":
		return nil, errutil.ValidationFailed("name is required", nil)
	case strings.TrimSpace(in.Description) == "":
		return nil, errutil.ValidationFailed("description is required", nil)
	}
	if strings.TrimSpace(in.GrantCommand) == "" {
		in.GrantCommand = taskname.GameRewardProcess
	}

	exists, err := s.repo.ExistsByTypeAndName(ctx, in.Type, in.Name)
	if err != nil {
		return nil, errutil.Internal("failed to check reward", err)
	}
	if exists {
		return nil, errutil.Conflict(MsgDuplicate, nil)
	}

	reward := &Reward{
		ID:           gen.ID(s.node),
		Type:         in.Type,
		Name:         in.Name,
		Description:  in.Description,
		GrantCommand: in.GrantCommand,
	}
	if err := s.repo.Create(ctx, reward); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict(MsgDuplicate, err)
		}
		s.logger.Error("failed to create reward", zap.Error(err))
		return nil, errutil.Internal("failed to create reward", err)
	}

	s.logger.Info("reward created", zap.String("reward_id", reward.ID), zap.String("type", reward.Type))
	return reward, nil
}

// GetReward returns the reward with the given id. Rewards are immutable, so
// lookups are served from the cache.
func (s *Service) GetReward(ctx context.Context, id string) (*Reward, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errutil.ValidationFailed("rewardId is required", nil)
	}

	return cache.UseCache(ctx, s.cache, "reward", rediskey.Reward(id), func(ctx context.Context) (*Reward, error) {
		reward, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound(MsgNotFound, nil)
		}
		if err != nil {
			return nil, errutil.Internal("failed to load reward", err)
		}
		return reward, nil
	})
}
