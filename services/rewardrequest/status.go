package rewardrequest

import "smallbiznis-promotion/pkg/errutil"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// IsTerminal reports whether no further transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusSuccess || s == StatusFailed
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionProcess Action = "process"
	ActionResult  Action = "result"

	// ActionCreate has no rule; it only labels the initial PENDING notification.
	ActionCreate Action = "create"
)

const (
	MsgInvalidStatus  = "Invalid status"
	MsgReasonRequired = "reason is required"
	DefaultFailReason = "unknown failure"
)

// Rule is one edge of the reward request lifecycle.
type Rule struct {
	From    []Status
	To      Status
	Message string
}

// Allows reports whether the rule may fire from s.
func (r Rule) Allows(s Status) bool {
	for _, from := range r.From {
		if from == s {
			return true
		}
	}
	return false
}

var rules = map[Action]Rule{
	ActionApprove: {
		From:    []Status{StatusPending},
		To:      StatusApproved,
		Message: "Only PENDING requests can be approved",
	},
	ActionReject: {
		From:    []Status{StatusPending},
		To:      StatusRejected,
		Message: "Only PENDING requests can be rejected",
	},
	ActionProcess: {
		From:    []Status{StatusApproved},
		To:      StatusProcessing,
		Message: "Only APPROVED requests can be processed",
	},
}

var resultRules = map[Status]Rule{
	StatusSuccess: {
		From:    []Status{StatusProcessing},
		To:      StatusSuccess,
		Message: "Only PROCESSING requests can be completed",
	},
	// A grant the authority refuses before processing fails from APPROVED.
	StatusFailed: {
		From:    []Status{StatusProcessing, StatusApproved},
		To:      StatusFailed,
		Message: "Only PROCESSING or APPROVED requests can be failed",
	},
}

// Transition returns the rule for action. outcome is only read for
// ActionResult, where it must be SUCCESS or FAILED.
func Transition(action Action, outcome Status) (Rule, error) {
	if action == ActionResult {
		rule, ok := resultRules[outcome]
		if !ok {
			return Rule{}, errutil.ValidationFailed(MsgInvalidStatus, nil)
		}
		return rule, nil
	}

	rule, ok := rules[action]
	if !ok {
		return Rule{}, errutil.ValidationFailed("unknown action "+string(action), nil)
	}
	return rule, nil
}
