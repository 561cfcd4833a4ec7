//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/pointsync/pointsync/internal/server"
)

// InitializeServer wires a server from its configuration.
func InitializeServer(config server.Config) *server.Server {
	wire.Build(
		ProvideLogger,
		ProvideAuthenticator,
		ProvideScope,
		server.NewServer,
	)
	return nil
}
