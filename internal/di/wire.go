//go:build wireinject
// +build wireinject

package di

import (
	"FinSim/pkg/config"
	"FinSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideOrderSink,
		ProvideDecisionStore,
		ProvideStateStore,
		ProvideHub,

		// Simulation
		ProvideMarket,
		ProvideAgents,
		ProvideSession,
		ProvideFillsHandler,
		ProvideKafkaConsumer,

		// HTTP
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		wire.Struct(new(server.Deps), "*"),
		ProvideApp,
	)
	return &server.App{}, nil
}
