package fulfillment

import (
	"context"
	"net/url"
	"strings"

	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/metrics"
	"smallbiznis-promotion/pkg/taskname"
	"smallbiznis-promotion/services/event"
	"smallbiznis-promotion/services/eventreward"
	"smallbiznis-promotion/services/game"
	"smallbiznis-promotion/services/reward"
	"smallbiznis-promotion/services/rewardrequest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type EventRewards interface {
	GetEventReward(ctx context.Context, id string) (*eventreward.EventReward, error)
}

type Rewards interface {
	GetReward(ctx context.Context, id string) (*reward.Reward, error)
}

type Events interface {
	GetEvent(ctx context.Context, id string) (*event.Event, error)
}

// Callbacks says where the authority reports a grant's progress.
type Callbacks struct {
	// BaseURL of this service. When set, the authority marks the grant as
	// processing with a synchronous POST and learns whether it was accepted.
	BaseURL string
	// Queue the result callback, and the processing callback without a
	// BaseURL, are enqueued on.
	Queue string
}

func (c Callbacks) build(requestID string) (processing, result game.Callback) {
	correlation := map[string]any{"rewardRequestId": requestID}

	processing = game.Callback{
		Cmd:     taskname.RewardRequestProcess,
		Queue:   c.Queue,
		Payload: correlation,
	}
	if c.BaseURL != "" {
		processing = game.Callback{
			URL:     strings.TrimRight(c.BaseURL, "/") + "/v1/reward-requests/" + url.PathEscape(requestID) + "/process",
			Payload: correlation,
		}
	}
	result = game.Callback{
		Cmd:     taskname.RewardRequestResult,
		Queue:   c.Queue,
		Payload: correlation,
	}
	return processing, result
}

// Orchestrator turns an approved reward request into a grant at the game
// authority.
type Orchestrator struct {
	eventRewards EventRewards
	rewards      Rewards
	events       Events
	granter      game.Granter
	callbacks    Callbacks
	logger       *zap.Logger
}

type Params struct {
	fx.In

	EventRewards *eventreward.Service
	Rewards      *reward.Service
	Events       *event.Service
	Granter      game.Granter
	Config       *config.Config
	Logger       *zap.Logger `optional:"true"`
}

func NewOrchestrator(p Params) *Orchestrator {
	callbacks := Callbacks{
		BaseURL: p.Config.Game.CallbackURL,
		Queue:   p.Config.Game.CallbackQueue,
	}
	return New(p.EventRewards, p.Rewards, p.Events, p.Granter, callbacks, p.Logger)
}

func New(eventRewards EventRewards, rewards Rewards, events Events, granter game.Granter, callbacks Callbacks, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		eventRewards: eventRewards,
		rewards:      rewards,
		events:       events,
		granter:      granter,
		callbacks:    callbacks,
		logger:       logger,
	}
}

// Dispatch resolves the request's event reward, reward and event, and asks the
// authority to grant it. The request id is the grant's correlation id.
func (o *Orchestrator) Dispatch(ctx context.Context, req *rewardrequest.RewardRequest) (err error) {
	ctx, span := otel.Tracer("smallbiznis-promotion/fulfillment").Start(ctx, "fulfillment.Dispatch")
	span.SetAttributes(
		attribute.String("reward_request_id", req.ID),
		attribute.String("user_id", req.UserID),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.RecordGrantDispatch(status)
		span.End()
	}()

	link, err := o.eventRewards.GetEventReward(ctx, req.EventRewardID)
	if err != nil {
		return err
	}
	rw, err := o.rewards.GetReward(ctx, link.RewardID)
	if err != nil {
		return err
	}
	ev, err := o.events.GetEvent(ctx, link.EventID)
	if err != nil {
		return err
	}

	processing, result := o.callbacks.build(req.ID)
	err = o.granter.GrantReward(ctx, game.GrantRequest{
		RequestID:  req.ID,
		UserID:     req.UserID,
		EventID:    ev.ID,
		RewardID:   rw.ID,
		Type:       rw.Type,
		Name:       rw.Name,
		Qty:        link.Qty,
		Command:    rw.GrantCommand,
		Processing: processing,
		Result:     result,
	})
	if err != nil {
		return err
	}

	o.logger.Info("reward grant dispatched",
		zap.String("reward_request_id", req.ID),
		zap.String("event_id", ev.ID),
		zap.String("reward_id", rw.ID),
		zap.Int("qty", link.Qty),
	)
	return nil
}
