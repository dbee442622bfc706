package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ircstat/internal/controllers"
	"ircstat/internal/parser"
	"ircstat/internal/providers"
	"ircstat/internal/services"
	"ircstat/internal/structures"
)

// --- minimal mocks for routes test ---

type routeTestLogger struct{}

func (m *routeTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Close()                                                  {}

type routeTestCache struct{}

func (m *routeTestCache) Get(_ string) ([]byte, bool) { return nil, false }
func (m *routeTestCache) Set(_ string, _ []byte)      {}
func (m *routeTestCache) Evict(_ string) int          { return 0 }

type routeTestDiagnostics struct{}

func (m *routeTestDiagnostics) Diagnostics() parser.DiagnosticsSummary {
	return parser.DiagnosticsSummary{}
}

func newRouteTestController() *controllers.ApiController {
	conf := &structures.Config{Workers: structures.WorkersConfig{Aggregate: 1}}
	service := services.NewAggregationService(conf, &routeTestLogger{}, nil)
	return controllers.NewApiController(&routeTestLogger{}, service, &routeTestDiagnostics{}, &routeTestCache{})
}

func TestInitRoutes_RegistersReadOnlyRoutes(t *testing.T) {
	router := InitRoutes(newRouteTestController(), &structures.Config{})
	routes := router.GetRoutes()

	require.Len(t, routes, 7)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.ElementsMatch(t, []string{
		"/plugins", "/channels", "/stats", "/stats/channel", "/stats/bucket", "/graphs", "/top", "/diagnostics",
	}, urls)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(newRouteTestController(), &structures.Config{})

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	for _, url := range []string{"/plugins", "/stats/channel", "/diagnostics"} {
		req := httptest.NewRequest(http.MethodPost, url, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, url)
	}

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInitRoutes_UnknownPluginIsNotFound(t *testing.T) {
	router := InitRoutes(newRouteTestController(), &structures.Config{})

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats?plugin=Nope", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
