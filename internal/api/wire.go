//go:build wireinject

package api

import (
	"github.com/dropbox/godropbox/time2"
	"github.com/google/wire"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	NewNetwork,
	NewSignerService,
	NewFeeService,
	NewInvokeService,
	NewKeystoreService,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewRPCClient, NewClock)
	return new(Server), nil
}

// InitNewServerWithClock returns a new Server instance using the given clock.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithClock(
	_ config.Server,
	_ time2.Clock,
) (*Server, error) {
	wire.Build(serviceSet, NewRPCClient)
	return new(Server), nil
}
