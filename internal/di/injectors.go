//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"ircstat/internal"
	"ircstat/internal/controllers"
	"ircstat/internal/identity"
	"ircstat/internal/parser"
	"ircstat/internal/plugins"
	"ircstat/internal/providers"
	"ircstat/internal/services"
	"ircstat/internal/statistic"
	"ircstat/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		identity.NewResolver,
		wire.Bind(new(identity.ResolverInterface), new(*identity.Resolver)),
		parser.NewEventParser,
		wire.Bind(new(parser.EventParserInterface), new(*parser.EventParser)),
		wire.Bind(new(controllers.DiagnosticsSource), new(*parser.EventParser)),
		plugins.NewRegistry,
		wire.Bind(new(plugins.RegistryInterface), new(*plugins.Registry)),

		services.NewAggregationService,
		statistic.NewZstdCompressor,
		statistic.NewFileManager,
		wire.Bind(new(statistic.FileManagerInterface), new(*statistic.FileManager)),
		statistic.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
