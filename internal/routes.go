package internal

import (
	"net/http"

	"ircstat/internal/controllers"
	"ircstat/internal/providers"
	"ircstat/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/plugins", http.HandlerFunc(apiController.GetPlugins))
	routers.Get("/channels", http.HandlerFunc(apiController.GetChannels))
	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	routers.Get("/stats/channel", http.HandlerFunc(apiController.GetChannelStats))
	routers.Get("/stats/bucket", http.HandlerFunc(apiController.GetBucketStats))
	routers.Get("/graphs", http.HandlerFunc(apiController.GetGraphs))
	routers.Get("/top", http.HandlerFunc(apiController.GetTopUsers))
	routers.Get("/diagnostics", http.HandlerFunc(apiController.GetDiagnostics))
	return routers
}
