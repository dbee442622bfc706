package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ircstat/internal/graphs"
	"ircstat/internal/models"
	"ircstat/internal/parser"
	"ircstat/internal/providers"
	"ircstat/internal/services"
	"ircstat/internal/structures"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }
func (m *mockCache) Evict(prefix string) int {
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n
}

type mockDiagnostics struct {
	summary parser.DiagnosticsSummary
}

func (m *mockDiagnostics) Diagnostics() parser.DiagnosticsSummary { return m.summary }

// --- helpers ---

func day(d int) time.Time {
	return time.Date(2013, time.June, d, 0, 0, 0, 0, time.UTC)
}

func newTestService() services.AggregationServiceInterface {
	conf := &structures.Config{Workers: structures.WorkersConfig{Aggregate: 1}}
	svc := services.NewAggregationService(conf, &mockLogger{}, nil)

	totals := &services.Report{
		Plugin: "Totals",
		Graphs: []graphs.Request{graphs.UserComparison("Chatterboxes", "message", 10)},
		Stats:  models.NewNetworkStat(),
	}
	models.NewScope(totals.Stats, "chan1", day(15)).IncShared("bob", models.Deltas{"message": 3})
	models.NewScope(totals.Stats, "chan1", day(16)).IncShared("alice", models.Deltas{"message": 5})
	models.NewScope(totals.Stats, "chan2", day(16)).IncShared("carol", models.Deltas{"message": 3})

	activity := &services.Report{Plugin: "Activity", Stats: models.NewNetworkStat()}
	models.NewScope(activity.Stats, "chan3", day(15)).IncShared("bob", models.Deltas{"words": 7})

	svc.PutReports([]*services.Report{totals, activity})
	return svc
}

func newTestController(cache *mockCache) *ApiController {
	diag := &mockDiagnostics{summary: parser.DiagnosticsSummary{LinesMatched: 10, LinesUnmatched: 2}}
	return NewApiController(&mockLogger{}, newTestService(), diag, cache)
}

func get(t *testing.T, handler http.HandlerFunc, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// --- tests ---

func TestGetPlugins(t *testing.T) {
	ac := newTestController(newMockCache())
	rr := get(t, ac.GetPlugins, "/plugins")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp []pluginInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, pluginInfo{Name: "Activity", Graphs: 0, Channels: 1, Users: 1, Keys: []string{"words"}}, resp[0])
	assert.Equal(t, pluginInfo{Name: "Totals", Graphs: 1, Channels: 2, Users: 3, Keys: []string{"message"}}, resp[1])
}

func TestGetChannels(t *testing.T) {
	ac := newTestController(newMockCache())
	rr := get(t, ac.GetChannels, "/channels")

	var resp []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"chan1", "chan2", "chan3"}, resp)
}

func TestGetStats(t *testing.T) {
	ac := newTestController(newMockCache())
	rr := get(t, ac.GetStats, "/stats?plugin=Totals")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp services.ReportSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Totals", resp.Plugin)
	assert.Equal(t, models.SnapshotVersion, resp.Version)
	assert.Equal(t, 11, resp.Network.Stats["message"])
	assert.Equal(t, 5, resp.Network.Users["alice"]["message"])
	assert.Equal(t, 3, resp.Network.Channels["chan1"].Days["2013-06-15"].Stats["message"])
}

func TestGetBucketStats(t *testing.T) {
	ac := newTestController(newMockCache())

	tests := []struct {
		url     string
		period  string
		key     string
		message int
	}{
		{"/stats/bucket?plugin=Totals&ch=chan1&date=2013-06-16", "day", "2013-06-16", 5},
		{"/stats/bucket?plugin=Totals&ch=chan1&period=day&date=2013-06-15", "day", "2013-06-15", 3},
		// Saturday 15th and Sunday 16th both belong to the week keyed by Sunday 9th
		{"/stats/bucket?plugin=Totals&ch=chan1&period=week&date=2013-06-15", "week", "2013-06-09", 8},
		{"/stats/bucket?plugin=Totals&ch=chan1&period=week&date=2013-06-16", "week", "2013-06-09", 8},
		{"/stats/bucket?plugin=Totals&ch=chan1&period=month&date=2013-06-01", "month", "2013-06-30", 8},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rr := get(t, ac.GetBucketStats, tt.url)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var resp bucketResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "chan1", resp.Channel)
			assert.Equal(t, tt.period, resp.Period)
			assert.Equal(t, tt.key, resp.Key)
			assert.Equal(t, tt.message, resp.Bucket.Stats["message"])
		})
	}
}

func TestGetBucketStats_Errors(t *testing.T) {
	ac := newTestController(newMockCache())

	tests := []struct {
		url  string
		code int
	}{
		{"/stats/bucket?ch=chan1&date=2013-06-15", http.StatusBadRequest},
		{"/stats/bucket?plugin=Totals&date=2013-06-15", http.StatusBadRequest},
		{"/stats/bucket?plugin=Totals&ch=chan1&date=15.06.2013", http.StatusBadRequest},
		{"/stats/bucket?plugin=Totals&ch=chan1&period=year&date=2013-06-15", http.StatusBadRequest},
		{"/stats/bucket?plugin=Totals&ch=nope&date=2013-06-15", http.StatusNotFound},
		{"/stats/bucket?plugin=Totals&ch=chan2&date=2013-06-15", http.StatusNotFound},
		{"/stats/bucket?plugin=Nope&ch=chan1&date=2013-06-15", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.code, get(t, ac.GetBucketStats, tt.url).Code)
		})
	}
}

func TestGetStats_Errors(t *testing.T) {
	ac := newTestController(newMockCache())

	assert.Equal(t, http.StatusBadRequest, get(t, ac.GetStats, "/stats").Code)
	assert.Equal(t, http.StatusNotFound, get(t, ac.GetStats, "/stats?plugin=Nope").Code)
}

func TestGetStats_ServedFromCache(t *testing.T) {
	cache := newMockCache()
	ac := newTestController(cache)

	first := get(t, ac.GetStats, "/stats?plugin=Totals")
	require.Equal(t, http.StatusOK, first.Code)
	require.Contains(t, cache.data, "api:stats:Totals@1")

	cache.data["api:stats:Totals@1"] = []byte(`{"cached":true}`)
	second := get(t, ac.GetStats, "/stats?plugin=Totals")
	assert.JSONEq(t, `{"cached":true}`, second.Body.String())

	// errors are not cached
	get(t, ac.GetStats, "/stats?plugin=Nope")
	assert.NotContains(t, cache.data, "api:stats:Nope@1")
}

func TestGetPlugins_RebuildBypassesCache(t *testing.T) {
	cache := newMockCache()
	service := newTestService()
	ac := NewApiController(&mockLogger{}, service, &mockDiagnostics{}, cache)

	var before []pluginInfo
	require.NoError(t, json.Unmarshal(get(t, ac.GetPlugins, "/plugins").Body.Bytes(), &before))
	require.Len(t, before, 2)

	service.PutReports([]*services.Report{{Plugin: "Totals", Stats: models.NewNetworkStat()}})

	var after []pluginInfo
	require.NoError(t, json.Unmarshal(get(t, ac.GetPlugins, "/plugins").Body.Bytes(), &after))
	require.Len(t, after, 1)
	assert.Equal(t, "Totals", after[0].Name)
	assert.Contains(t, cache.data, "api:plugins@2")
}

func TestGetChannelStats(t *testing.T) {
	ac := newTestController(newMockCache())
	rr := get(t, ac.GetChannelStats, "/stats/channel?plugin=Totals&ch=chan1")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ChannelSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.Stats["message"])
	assert.Equal(t, 3, resp.Users["bob"]["message"])
	assert.Equal(t, 8, resp.Months["2013-06-30"].Stats["message"])

	assert.Equal(t, http.StatusNotFound, get(t, ac.GetChannelStats, "/stats/channel?plugin=Totals&ch=chan9").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, ac.GetChannelStats, "/stats/channel?plugin=Totals").Code)
}

func TestGetGraphs(t *testing.T) {
	ac := newTestController(newMockCache())

	rr := get(t, ac.GetGraphs, "/graphs?plugin=Totals")
	var resp []graphs.Request
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, graphs.NetworkUserComparison, resp[0].Kind)

	rr = get(t, ac.GetGraphs, "/graphs?plugin=Activity")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetTopUsers(t *testing.T) {
	ac := newTestController(newMockCache())

	rr := get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp []rankedUser
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []rankedUser{{"alice", 5}, {"bob", 3}, {"carol", 3}}, resp)

	rr = get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message&limit=1")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []rankedUser{{"alice", 5}}, resp)

	rr = get(t, ac.GetTopUsers, "/top?plugin=Totals&key=nothing")
	assert.JSONEq(t, `[]`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message&limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message&limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, ac.GetTopUsers, "/top?plugin=Totals").Code)
}

func TestGetTopUsers_WithinChannel(t *testing.T) {
	ac := newTestController(newMockCache())

	rr := get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message&ch=chan1")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp []rankedUser
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []rankedUser{{"alice", 5}, {"bob", 3}}, resp)

	rr = get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message&ch=chan2")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []rankedUser{{"carol", 3}}, resp)

	assert.Equal(t, http.StatusNotFound, get(t, ac.GetTopUsers, "/top?plugin=Totals&key=message&ch=nope").Code)
}

func TestGetDiagnostics(t *testing.T) {
	ac := newTestController(newMockCache())
	rr := get(t, ac.GetDiagnostics, "/diagnostics")

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp["lines_matched"])
	assert.Equal(t, int64(2), resp["lines_unmatched"])
	assert.Equal(t, int64(0), resp["files_failed"])

	noDiag := NewApiController(&mockLogger{}, newTestService(), nil, newMockCache())
	rr = get(t, noDiag.GetDiagnostics, "/diagnostics")
	assert.Equal(t, http.StatusOK, rr.Code)
}
