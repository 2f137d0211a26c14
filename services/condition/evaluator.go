package condition

import (
	"context"
	"time"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultQueryTimeout bounds a single leaf query when none is configured.
const DefaultQueryTimeout = 3 * time.Second

// MsgTransport is returned when the game authority cannot answer a leaf query.
const MsgTransport = "game server error"

// Querier answers "what is this user's value for field" for a command.
type Querier interface {
	QueryUserField(ctx context.Context, command, userID, field string) (float64, error)
}

// Result is the outcome of evaluating one node.
type Result struct {
	Success bool   `json:"success"`
	Detail  Detail `json:"detail"`
}

// Detail records why a node evaluated the way it did.
type Detail struct {
	Op        Op       `json:"op,omitempty"`
	Field     string   `json:"field,omitempty"`
	UserValue *float64 `json:"userValue,omitempty"`
	Expected  *float64 `json:"expected,omitempty"`
	Children  []Result `json:"children,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// Evaluator evaluates condition trees for a user against a Querier.
type Evaluator struct {
	querier Querier
	timeout time.Duration
	logger  *zap.Logger
	tracer  trace.Tracer
}

type Option func(*Evaluator)

func WithQueryTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEvaluator(q Querier, opts ...Option) *Evaluator {
	e := &Evaluator{
		querier: q,
		timeout: DefaultQueryTimeout,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("smallbiznis-promotion/condition"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate evaluates root for userID. Children of AND/OR nodes are evaluated
// concurrently and every branch is collected. Any failed leaf query fails the
// whole evaluation with a BAD_GATEWAY error.
func (e *Evaluator) Evaluate(ctx context.Context, root Node, userID string) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "condition.Evaluate", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("condition", root.String()),
	))
	defer span.End()

	start := time.Now()
	res, err := e.eval(ctx, root, userID)

	outcome := "not_met"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case res.Success:
		outcome = "met"
	}
	metrics.RecordConditionEvaluation(outcome, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("outcome", outcome))

	return res, err
}

func (e *Evaluator) eval(ctx context.Context, n Node, userID string) (Result, error) {
	switch {
	case n.Op.IsInternal():
		return e.evalInternal(ctx, n, userID)
	case n.Op.IsLeaf():
		return e.evalLeaf(ctx, n, userID)
	default:
		return Result{}, errutil.ValidationFailed(MsgInvalidStructure, nil)
	}
}

func (e *Evaluator) evalInternal(ctx context.Context, n Node, userID string) (Result, error) {
	if len(n.Children) == 0 {
		return Result{}, errutil.ValidationFailed(MsgInvalidStructure, nil)
	}

	results := make([]Result, len(n.Children))
	g, gctx := errgroup.WithContext(ctx)
	for i, child := range n.Children {
		g.Go(func() error {
			r, err := e.eval(gctx, child, userID)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	success := n.Op == OpAnd
	for _, r := range results {
		if n.Op == OpAnd && !r.Success {
			success = false
		}
		if n.Op == OpOr && r.Success {
			success = true
		}
	}

	return Result{
		Success: success,
		Detail:  Detail{Op: n.Op, Children: results},
	}, nil
}

func (e *Evaluator) evalLeaf(ctx context.Context, n Node, userID string) (Result, error) {
	if n.Value == nil {
		return Result{}, errutil.ValidationFailed(MsgInvalidStructure, nil)
	}

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	value, err := e.querier.QueryUserField(qctx, n.Command, userID, n.Field)
	if err != nil {
		metrics.RecordLeafQuery("error")
		e.logger.Warn("user field query failed",
			zap.String("cmd", n.Command),
			zap.String("field", n.Field),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return Result{}, errutil.BadGateway(MsgTransport, err)
	}
	metrics.RecordLeafQuery("ok")

	expected := *n.Value
	return Result{
		Success: Compare(n.Op, value, expected),
		Detail: Detail{
			Op:        n.Op,
			Field:     n.Field,
			UserValue: &value,
			Expected:  &expected,
		},
	}, nil
}

// Compare applies a leaf operator to an observed value and its threshold.
func Compare(op Op, value, expected float64) bool {
	switch op {
	case OpEQ:
		return value == expected
	case OpGTE:
		return value >= expected
	case OpLTE:
		return value <= expected
	default:
		return false
	}
}
