package condition

import (
	"math"
	"strings"

	"smallbiznis-promotion/pkg/errutil"
)

const (
	// MaxDepth counts the root as depth 1.
	MaxDepth  = 3
	MaxLeaves = 4

	MsgTooManyLeaves    = "too many leaf conditions (max 4)"
	MsgInvalidStructure = "invalid condition structure"
)

// Validate checks the shape of a condition tree before it is stored. Only a
// tree that is otherwise well-formed but has more than MaxLeaves leaves gets
// MsgTooManyLeaves; every other defect is MsgInvalidStructure.
func Validate(root Node) error {
	leaves, ok := walk(root, 1)
	switch {
	case !ok || leaves == 0:
		return errutil.ValidationFailed(MsgInvalidStructure, nil)
	case leaves > MaxLeaves:
		return errutil.ValidationFailed(MsgTooManyLeaves, nil)
	}
	return nil
}

func walk(n Node, depth int) (int, bool) {
	if depth > MaxDepth {
		return 0, false
	}

	switch {
	case n.Op.IsInternal():
		if len(n.Children) == 0 {
			return 0, false
		}
		total := 0
		for _, child := range n.Children {
			leaves, ok := walk(child, depth+1)
			if !ok {
				return 0, false
			}
			total += leaves
		}
		return total, true
	case n.Op.IsLeaf():
		if n.malformed || n.Value == nil {
			return 0, false
		}
		if math.IsNaN(*n.Value) || math.IsInf(*n.Value, 0) {
			return 0, false
		}
		if strings.TrimSpace(n.Command) == "" || strings.TrimSpace(n.Field) == "" {
			return 0, false
		}
		return 1, true
	default:
		return 0, false
	}
}
