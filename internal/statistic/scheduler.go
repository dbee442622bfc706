package statistic

import (
	"context"
	"sync"

	"github.com/roylee0704/gron"

	"ircstat/internal/providers"
	"ircstat/internal/services"
	"ircstat/internal/statistic/interfaces"
	"ircstat/internal/structures"
)

// Scheduler rebuilds the served reports on an interval while the logs keep
// growing, and optionally writes every rebuild to the output directory.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.AggregationServiceInterface
	fileManager FileManagerInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

// Init starts the refresh job. A zero refresh interval starts nothing.
func (s *Scheduler) Init(ctx context.Context, rebuild func(ctx context.Context) error) {
	interval := s.config.Refresh.Interval
	if interval <= 0 {
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if ctx.Err() != nil {
			return
		}

		s.logger.Infof(providers.TypeApp, "Rebuilding reports...")
		if err := rebuild(ctx); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while rebuilding reports: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Reports rebuilt, generation %d", s.service.Generation())

		if s.config.Refresh.Persist {
			_ = s.persist()
		}
	})

	s.logger.Infof(providers.TypeApp, "Refreshing reports every %s", interval)
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Persist writes the stored reports to the output directory.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	return s.persist()
}

func (s *Scheduler) persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting reports to %s...", s.config.Output.Dir)
	_, err := s.fileManager.SaveReports(s.config.Output.Dir, s.service.Reports())
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting reports: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.AggregationServiceInterface, fileManager FileManagerInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
	}
}
