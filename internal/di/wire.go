//go:build wireinject
// +build wireinject

package di

import (
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/config"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories (with business logic)
		ProvideObservationStorage,
		ProvideObservationPublisher,
		ProvideFinnhubStream,

		// Use cases
		ProvideObservationProcessor,
		ProvideObservationCollector,
		ProvideKafkaObservationsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
