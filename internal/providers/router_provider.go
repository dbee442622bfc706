package providers

import (
	"net/http"
	"strings"

	"ircstat/internal/structures"
)

// readMethods are the only methods the API answers; HEAD comes for free
// from net/http dropping the body.
var readMethods = []string{http.MethodGet, http.MethodHead}

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	GetRoutes() []structures.Route
	Paths() []string
	Handler() http.Handler
}

type RouterProvider struct {
	routes []structures.Route
}

// Get registers a read-only route; other methods get 405.
func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: methodHandler(readMethods, handler),
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// Paths lists the registered urls in registration order.
func (rp *RouterProvider) Paths() []string {
	paths := make([]string, len(rp.routes))
	for i, route := range rp.routes {
		paths[i] = route.Url
	}
	return paths
}

// Handler muxes every registered route. Unknown paths get 404.
func (rp *RouterProvider) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range rp.routes {
		mux.Handle(route.Url, route.Handler)
	}
	return mux
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

func methodHandler(methods []string, handler http.Handler) http.Handler {
	allow := strings.Join(methods, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				handler.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Allow", allow)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
}
