package useraction

import (
	"context"
	"strings"

	"smallbiznis-promotion/pkg/db"
	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/gen"
	"smallbiznis-promotion/pkg/taskname"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const MsgDuplicate = "User action already registered"

// Service keeps the catalog of user fields that conditions can be built on.
type Service struct {
	repo   Repository
	logger *zap.Logger
	node   *snowflake.Node
}

type ServiceParams struct {
	fx.In

	Repository Repository
	Logger     *zap.Logger `optional:"true"`
	Node       *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: p.Repository, logger: logger, node: p.Node}
}

type CreateUserActionInput struct {
	Cmd   string
	Field string
}

// CreateUserAction registers field under cmd, which defaults to the
// authority's user-action query.
func (s *Service) CreateUserAction(ctx context.Context, in CreateUserActionInput) (*UserAction, error) {
	in.Cmd = strings.TrimSpace(in.Cmd)
	in.Field = strings.TrimSpace(in.Field)
	if in.Field == "" {
		return nil, errutil.ValidationFailed("field is required", nil)
	}
	if in.Cmd == "" {
		in.Cmd = taskname.GameUserActionGet
	}

	exists, err := s.repo.ExistsByCmdAndField(ctx, in.Cmd, in.Field)
	if err != nil {
		return nil, errutil.Internal("failed to check user action", err)
	}
	if exists {
		return nil, errutil.Conflict(MsgDuplicate, nil)
	}

	action := &UserAction{
		ID:    gen.ID(s.node),
		Cmd:   in.Cmd,
		Field: in.Field,
	}
	if err := s.repo.Create(ctx, action); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict(MsgDuplicate, err)
		}
		s.logger.Error("failed to create user action", zap.Error(err))
		return nil, errutil.Internal("failed to create user action", err)
	}

	s.logger.Info("user action registered", zap.String("cmd", action.Cmd), zap.String("field", action.Field))
	return action, nil
}

func (s *Service) ListUserActions(ctx context.Context) ([]UserAction, error) {
	actions, err := s.repo.List(ctx)
	if err != nil {
		return nil, errutil.Internal("failed to list user actions", err)
	}
	return actions, nil
}
