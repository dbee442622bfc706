package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"ircstat/internal/graphs"
	"ircstat/internal/models"
	"ircstat/internal/parser"
	"ircstat/internal/providers"
	"ircstat/internal/services"
)

const defaultTopLimit = 10

// CachePrefix starts every response body key the controller caches.
const CachePrefix = "api:"

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

// DiagnosticsSource is anything that can report parser diagnostics.
type DiagnosticsSource interface {
	Diagnostics() parser.DiagnosticsSummary
}

type ApiController struct {
	logger      providers.Logger
	service     services.AggregationServiceInterface
	diagnostics DiagnosticsSource
	cache       providers.CacheProviderInterface
}

type pluginInfo struct {
	Name     string   `json:"name"`
	Run      string   `json:"run,omitempty"`
	Graphs   int      `json:"graphs"`
	Channels int      `json:"channels"`
	Users    int      `json:"users"`
	Keys     []string `json:"keys"`
}

type bucketResponse struct {
	Channel string                 `json:"channel"`
	Period  string                 `json:"period"`
	Key     string                 `json:"key"`
	Bucket  *models.BucketSnapshot `json:"bucket"`
}

type rankedUser struct {
	Nick  string `json:"nick"`
	Count int    `json:"count"`
}

func NewApiController(logger providers.Logger, service services.AggregationServiceInterface, diagnostics DiagnosticsSource, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		service:     service,
		diagnostics: diagnostics,
		cache:       cache,
	}
}

// serveFromCacheOrCompute memoizes the JSON body per report generation.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	cacheKey = fmt.Sprintf("%s@%d", cacheKey, ac.service.Generation())
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, errBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		ac.logger.Errorf(providers.TypeHttp, "%s: %v", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.logger.Errorf(providers.TypeHttp, "%s: %v", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) report(r *http.Request) (*services.Report, error) {
	name := r.URL.Query().Get("plugin")
	if name == "" {
		return nil, fmt.Errorf("%w: missing plugin", errBadRequest)
	}
	report, ok := ac.service.Report(name)
	if !ok {
		return nil, fmt.Errorf("plugin %s: %w", name, errNotFound)
	}
	return report, nil
}

func (ac *ApiController) GetPlugins(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, CachePrefix+"plugins", func() (any, error) {
		reports := ac.service.Reports()
		out := make([]pluginInfo, 0, len(reports))
		for _, rep := range reports {
			out = append(out, pluginInfo{
				Name:     rep.Plugin,
				Run:      rep.Run,
				Graphs:   len(rep.Graphs),
				Channels: len(rep.Stats.ChannelNames()),
				Users:    rep.Stats.UsersLen(),
				Keys:     rep.Stats.Stats.Keys(),
			})
		}
		return out, nil
	})
}

func (ac *ApiController) GetChannels(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, CachePrefix+"channels", func() (any, error) {
		return ac.service.Channels(), nil
	})
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ac.serveFromCacheOrCompute(w, CachePrefix+"stats:"+q.Get("plugin"), func() (any, error) {
		report, err := ac.report(r)
		if err != nil {
			return nil, err
		}
		return report.Snapshot(), nil
	})
}

func (ac *ApiController) GetChannelStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ac.serveFromCacheOrCompute(w, CachePrefix+"channel:"+q.Get("plugin")+":"+q.Get("ch"), func() (any, error) {
		report, err := ac.report(r)
		if err != nil {
			return nil, err
		}
		ch := q.Get("ch")
		if ch == "" {
			return nil, fmt.Errorf("%w: missing ch", errBadRequest)
		}
		stat, ok := report.Stats.LookupChannel(ch)
		if !ok {
			return nil, fmt.Errorf("channel %s: %w", ch, errNotFound)
		}
		return stat.Snapshot(), nil
	})
}

// GetBucketStats returns one day, week or month bucket of a channel. date may
// be any day inside the period; it is mapped to the bucket key.
func (ac *ApiController) GetBucketStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cacheKey := CachePrefix + "bucket:" + q.Get("plugin") + ":" + q.Get("ch") + ":" + q.Get("period") + ":" + q.Get("date")
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		report, err := ac.report(r)
		if err != nil {
			return nil, err
		}
		ch := q.Get("ch")
		if ch == "" {
			return nil, fmt.Errorf("%w: missing ch", errBadRequest)
		}
		d, err := models.ParseDate(q.Get("date"))
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest)
		}
		stat, ok := report.Stats.LookupChannel(ch)
		if !ok {
			return nil, fmt.Errorf("channel %s: %w", ch, errNotFound)
		}

		period := q.Get("period")
		var (
			key    time.Time
			lookup func(time.Time) (*models.BucketStat, bool)
		)
		switch period {
		case "", "day":
			period, key, lookup = "day", d, stat.LookupDay
		case "week":
			key, lookup = models.Week(d), stat.LookupWeek
		case "month":
			key, lookup = models.Month(d), stat.LookupMonth
		default:
			return nil, fmt.Errorf("%w: period must be day, week or month", errBadRequest)
		}

		bucket, ok := lookup(key)
		if !ok {
			return nil, fmt.Errorf("%s %s of %s: %w", period, models.FormatDate(key), ch, errNotFound)
		}
		return bucketResponse{
			Channel: ch,
			Period:  period,
			Key:     models.FormatDate(key),
			Bucket:  bucket.Snapshot(),
		}, nil
	})
}

func (ac *ApiController) GetGraphs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ac.serveFromCacheOrCompute(w, CachePrefix+"graphs:"+q.Get("plugin"), func() (any, error) {
		report, err := ac.report(r)
		if err != nil {
			return nil, err
		}
		if report.Graphs == nil {
			return []graphs.Request{}, nil
		}
		return report.Graphs, nil
	})
}

// userLister is the users collection of the network or of one channel.
type userLister interface {
	UserNames() []string
	LookupUser(nick string) (*models.UserStat, bool)
}

// GetTopUsers ranks users of a plugin by one counter key, across the network
// or within the channel named by ch.
func (ac *ApiController) GetTopUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultTopLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil || n < 1 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	cacheKey := fmt.Sprintf("%stop:%s:%s:%s:%d", CachePrefix, q.Get("plugin"), q.Get("ch"), q.Get("key"), limit)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		report, err := ac.report(r)
		if err != nil {
			return nil, err
		}
		key := q.Get("key")
		if key == "" {
			return nil, fmt.Errorf("%w: missing key", errBadRequest)
		}

		var users userLister = report.Stats
		if ch := q.Get("ch"); ch != "" {
			stat, ok := report.Stats.LookupChannel(ch)
			if !ok {
				return nil, fmt.Errorf("channel %s: %w", ch, errNotFound)
			}
			users = stat
		}
		return rankUsers(users, key, limit), nil
	})
}

// rankUsers orders users by the count of key, ties broken by nick. Users
// that never touched key are left out.
func rankUsers(users userLister, key string, limit int) []rankedUser {
	ranked := make([]rankedUser, 0)
	for _, nick := range users.UserNames() {
		u, ok := users.LookupUser(nick)
		if !ok {
			continue
		}
		if n := u.Stats.Get(key); n > 0 {
			ranked = append(ranked, rankedUser{Nick: nick, Count: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// GetDiagnostics is never cached, the counters only grow.
func (ac *ApiController) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	var summary parser.DiagnosticsSummary
	if ac.diagnostics != nil {
		summary = ac.diagnostics.Diagnostics()
	}

	gson, err := json.Marshal(summary)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
