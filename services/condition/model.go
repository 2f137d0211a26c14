package condition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Op is the operator of a condition node. AND and OR are internal nodes,
// EQ, GTE and LTE are leaves.
type Op string

const (
	OpAnd Op = "AND"
	OpOr  Op = "OR"
	OpEQ  Op = "EQ"
	OpGTE Op = "GTE"
	OpLTE Op = "LTE"
)

// Symbolic spellings accepted on input.
var opAliases = map[string]Op{
	"AND": OpAnd,
	"OR":  OpOr,
	"EQ":  OpEQ,
	"==":  OpEQ,
	"GTE": OpGTE,
	">=":  OpGTE,
	"LTE": OpLTE,
	"<=":  OpLTE,
}

func (o Op) IsInternal() bool { return o == OpAnd || o == OpOr }

func (o Op) IsLeaf() bool { return o == OpEQ || o == OpGTE || o == OpLTE }

// Node is one node of a condition tree. Internal nodes use Children; leaves
// use Command, Field and Value.
type Node struct {
	Op       Op       `json:"op"`
	Children []Node   `json:"children,omitempty"`
	Command  string   `json:"cmd,omitempty"`
	Field    string   `json:"field,omitempty"`
	Value    *float64 `json:"value,omitempty"`

	// set when the input carried a non-numeric value
	malformed bool
}

func And(children ...Node) Node { return Node{Op: OpAnd, Children: children} }

func Or(children ...Node) Node { return Node{Op: OpOr, Children: children} }

func Leaf(op Op, command, field string, value float64) Node {
	return Node{Op: op, Command: command, Field: field, Value: &value}
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		Op       string          `json:"op"`
		Children []Node          `json:"children"`
		Command  string          `json:"cmd"`
		Field    string          `json:"field"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = Node{
		Op:       Op(raw.Op),
		Children: raw.Children,
		Command:  raw.Command,
		Field:    raw.Field,
	}
	if op, ok := opAliases[strings.ToUpper(strings.TrimSpace(raw.Op))]; ok {
		n.Op = op
	}

	value := bytes.TrimSpace(raw.Value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil
	}
	f, err := strconv.ParseFloat(string(value), 64)
	if err != nil {
		n.malformed = true
		return nil
	}
	n.Value = &f
	return nil
}

func (n Node) String() string {
	if n.Op.IsInternal() {
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, c.String())
		}
		return fmt.Sprintf("%s(%s)", n.Op, strings.Join(parts, ", "))
	}
	value := "<nil>"
	if n.Value != nil {
		value = strconv.FormatFloat(*n.Value, 'f', -1, 64)
	}
	return fmt.Sprintf("%s(%s:%s, %s)", n.Op, n.Command, n.Field, value)
}
