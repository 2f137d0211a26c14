package condition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"smallbiznis-promotion/pkg/errutil"
)

const cmd = "game.user-action.get"

func gte(field string, v float64) Node { return Leaf(OpGTE, cmd, field, v) }

func requireInvalid(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed), err.Error())
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, msg, base.Message)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{name: "single leaf", node: gte("loginDays", 7)},
		{name: "depth three", node: And(gte("a", 1), Or(gte("b", 2), gte("c", 3)))},
		{name: "four leaves", node: Or(gte("a", 1), gte("b", 1), gte("c", 1), gte("d", 1))},
		{
			name: "five leaves",
			node: Or(gte("a", 1), gte("b", 1), gte("c", 1), gte("d", 1), gte("e", 1)),
			want: MsgTooManyLeaves,
		},
		{
			name: "five leaves across levels",
			node: And(Or(gte("a", 1), gte("b", 1), gte("c", 1)), Or(gte("d", 1), gte("e", 1))),
			want: MsgTooManyLeaves,
		},
		{
			name: "depth four",
			node: And(Or(And(gte("a", 1)))),
			want: MsgInvalidStructure,
		},
		{
			name: "depth four and too many leaves",
			node: Or(gte("a", 1), gte("b", 1), gte("c", 1), gte("d", 1), And(Or(And(gte("e", 1))))),
			want: MsgInvalidStructure,
		},
		{name: "empty children", node: And(), want: MsgInvalidStructure},
		{name: "empty command", node: Leaf(OpEQ, "", "loginDays", 1), want: MsgInvalidStructure},
		{name: "blank field", node: Leaf(OpEQ, cmd, "  ", 1), want: MsgInvalidStructure},
		{name: "missing value", node: Node{Op: OpGTE, Command: cmd, Field: "x"}, want: MsgInvalidStructure},
		{name: "unknown op", node: Node{Op: "NOT", Children: []Node{gte("a", 1)}}, want: MsgInvalidStructure},
		{name: "zero value", node: Node{}, want: MsgInvalidStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.node)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			requireInvalid(t, err, tt.want)
		})
	}
}

func TestNodeUnmarshalJSON(t *testing.T) {
	raw := `{"op":"AND","children":[
		{"op":">=","cmd":"game.user-action.get","field":"loginDays","value":7},
		{"op":"OR","children":[
			{"op":"==","cmd":"game.user-action.get","field":"level","value":10},
			{"op":"lte","cmd":"game.user-action.get","field":"reports","value":0}
		]}
	]}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	require.NoError(t, Validate(n))

	require.Equal(t, OpAnd, n.Op)
	require.Equal(t, OpGTE, n.Children[0].Op)
	require.Equal(t, 7.0, *n.Children[0].Value)
	require.Equal(t, OpEQ, n.Children[1].Children[0].Op)
	require.Equal(t, OpLTE, n.Children[1].Children[1].Op)
	require.Equal(t, "AND(GTE(game.user-action.get:loginDays, 7), OR(EQ(game.user-action.get:level, 10), LTE(game.user-action.get:reports, 0)))", n.String())

	out, err := json.Marshal(n)
	require.NoError(t, err)
	var again Node
	require.NoError(t, json.Unmarshal(out, &again))
	require.Equal(t, n, again)
}

func TestNodeUnmarshalNonNumericValue(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"op":"GTE","cmd":"c","field":"f","value":"7"}`), &n))
	requireInvalid(t, Validate(n), MsgInvalidStructure)

	require.NoError(t, json.Unmarshal([]byte(`{"op":"GTE","cmd":"c","field":"f","value":true}`), &n))
	requireInvalid(t, Validate(n), MsgInvalidStructure)

	require.NoError(t, json.Unmarshal([]byte(`{"op":"GTE","cmd":"c","field":"f","value":null}`), &n))
	requireInvalid(t, Validate(n), MsgInvalidStructure)
}
