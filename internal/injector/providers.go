package injector

import (
	"github.com/pointsync/pointsync/internal/core/observability/log"
	"github.com/pointsync/pointsync/internal/core/replication"
	"github.com/pointsync/pointsync/internal/server"
)

// ProvideLogger builds the process logger from the configured level.
func ProvideLogger(config server.Config) log.Log {
	return log.New(log.ParseLevel(config.LogLevel))
}

// ProvideAuthenticator builds the static credential gate.
func ProvideAuthenticator(config server.Config) replication.Authenticator {
	return replication.StaticAuthenticator{
		Username: config.Auth.Username,
		Password: config.Auth.Password,
	}
}

// ProvideScope builds the default scope policy: every entity of a known
// kind is visible to every user.
func ProvideScope() replication.ScopePredicate {
	return replication.VisibleKinds{}
}
