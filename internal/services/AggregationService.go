package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"ircstat/internal/models"
	"ircstat/internal/plugins"
	"ircstat/internal/providers"
	"ircstat/internal/structures"
	"ircstat/internal/worker"
)

type AggregationServiceInterface interface {
	Run(ctx context.Context, loaded []plugins.Plugin, conversations models.ConversationSet) ([]*Report, error)
	Reports() []*Report
	Report(plugin string) (*Report, bool)
	PutReports(reports []*Report)
	Generation() uint64
	Updated() time.Time
	Channels() []string
}

// PluginError names the event a plugin failed on. The plugin's stats are
// dropped since counters already applied cannot be rolled back.
type PluginError struct {
	Plugin  string
	Channel string
	Date    time.Time
	Index   int
	Event   *models.Event
	Err     error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s failed on %s %s event #%d (%v): %v",
		e.Plugin, e.Channel, models.FormatDate(e.Date), e.Index, e.Event, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

type AggregationService struct {
	mu         sync.RWMutex
	reports    map[string]*Report
	generation *atomic.Uint64
	updated    *atomic.Time
	workers    int
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewAggregationService(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) AggregationServiceInterface {
	return &AggregationService{
		reports:    make(map[string]*Report),
		generation: atomic.NewUint64(0),
		updated:    atomic.NewTime(time.Time{}),
		workers:    conf.Workers.Aggregate,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run folds every conversation into a fresh stat tree per plugin. Plugins run
// concurrently; a failing plugin is left out of the result and its error is
// returned next to the reports of the others.
func (s *AggregationService) Run(ctx context.Context, loaded []plugins.Plugin, conversations models.ConversationSet) ([]*Report, error) {
	start := time.Now()

	results := worker.Run(ctx, loaded, s.workers, func(ctx context.Context, p plugins.Plugin) (*Report, error) {
		return s.aggregate(ctx, p, conversations)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		reports []*Report
		errs    error
	)
	for _, res := range results {
		name := res.Item.Name()
		if res.Err != nil {
			s.metrics.IncPluginFailures(name)
			s.logger.Errorf(providers.TypeAggregate, "%v", res.Err)
			errs = multierr.Append(errs, res.Err)
			continue
		}
		reports = append(reports, res.Value)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Plugin < reports[j].Plugin
	})
	run := ulid.Make().String()
	for _, r := range reports {
		r.Run = run
	}
	// A run in which every plugin failed keeps the previous reports.
	if len(reports) > 0 || len(loaded) == 0 {
		s.PutReports(reports)
	}

	s.metrics.ObserveStageDuration("aggregate", time.Since(start))
	s.logger.Infof(providers.TypeAggregate, "Run %s aggregated %d conversations with %d plugins (%d failed) in %s",
		run, conversations.Len(), len(loaded), len(multierr.Errors(errs)), time.Since(start))

	return reports, errs
}

func (s *AggregationService) aggregate(ctx context.Context, p plugins.Plugin, conversations models.ConversationSet) (*Report, error) {
	network := models.NewNetworkStat()
	events := 0

	for _, channel := range conversations.Channels() {
		for _, date := range conversations.Dates(channel) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			conv, _ := conversations.Get(channel, date)
			scope := models.NewScope(network, channel, date)
			if err := feed(p, scope, conv); err != nil {
				return nil, err
			}
			events += len(conv.Events)
		}
	}

	s.metrics.AddEvents(p.Name(), events)
	s.logger.Debugf(providers.TypeAggregate, "Plugin %s processed %d events", p.Name(), events)

	return &Report{
		Plugin: p.Name(),
		Graphs: p.Graphs(),
		Stats:  network,
	}, nil
}

// feed hands the events of conv to p in file order. A panic inside the plugin
// is turned into an error naming the event.
func feed(p plugins.Plugin, scope *models.Scope, conv *models.Conversation) (err error) {
	i := 0
	defer func() {
		if r := recover(); r != nil {
			err = &PluginError{
				Plugin:  p.Name(),
				Channel: conv.Channel,
				Date:    conv.Date,
				Index:   i,
				Event:   conv.Events[i],
				Err:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	for ; i < len(conv.Events); i++ {
		if perr := p.ProcessMessage(scope, conv.Events[i]); perr != nil {
			return &PluginError{
				Plugin:  p.Name(),
				Channel: conv.Channel,
				Date:    conv.Date,
				Index:   i,
				Event:   conv.Events[i],
				Err:     perr,
			}
		}
	}
	return nil
}

func (s *AggregationService) Reports() []*Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]*Report, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Plugin < reports[j].Plugin
	})
	return reports
}

func (s *AggregationService) Report(plugin string) (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[plugin]
	return r, ok
}

// PutReports replaces the stored reports and bumps the generation.
func (s *AggregationService) PutReports(reports []*Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = make(map[string]*Report, len(reports))
	for _, r := range reports {
		s.reports[r.Plugin] = r
	}
	s.updated.Store(time.Now())
	s.generation.Inc()
}

// Updated is when the stored reports were last swapped, zero before the
// first PutReports.
func (s *AggregationService) Updated() time.Time {
	return s.updated.Load()
}

// Generation counts the PutReports calls, so readers can tell when the
// stored reports were swapped.
func (s *AggregationService) Generation() uint64 {
	return s.generation.Load()
}

// Channels lists every channel seen by any stored report.
func (s *AggregationService) Channels() []string {
	seen := make(map[string]struct{})
	for _, r := range s.Reports() {
		for _, ch := range r.Stats.ChannelNames() {
			seen[ch] = struct{}{}
		}
	}
	channels := make([]string, 0, len(seen))
	for ch := range seen {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}
