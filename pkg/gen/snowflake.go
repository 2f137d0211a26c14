package gen

import (
	"smallbiznis-promotion/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("snowflake", fx.Provide(NewSnowflakeNode))

// NewSnowflakeNode returns the ID generator for this instance. Every replica
// must be configured with a distinct SNOWFLAKE_NODE.
func NewSnowflakeNode(cfg *config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

// ID is the string form used as a primary key.
func ID(node *snowflake.Node) string {
	return node.Generate().String()
}
