package secretmanager

import (
	"os"

	vault "github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a Vault client configured from VAULT_* environment
// variables. Include it only when Enabled reports true.
var Module = fx.Module("secretmanager", fx.Provide(ProvideVault))

// Enabled reports whether a Vault address is configured.
func Enabled() bool {
	return os.Getenv("VAULT_ADDR") != ""
}

func ProvideVault() (*vault.Client, error) {
	client, err := vault.New(
		vault.WithEnvironment(),
	)
	if err != nil {
		return nil, err
	}

	zap.L().Info("[Vault] client configured", zap.String("addr", os.Getenv("VAULT_ADDR")))
	return client, nil
}
