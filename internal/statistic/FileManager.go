package statistic

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"

	"ircstat/internal/providers"
	"ircstat/internal/services"
	"ircstat/internal/statistic/interfaces"
	"ircstat/internal/structures"
)

const (
	reportExt           = ".json"
	compressedReportExt = ".json.zst"
)

type FileManagerInterface interface {
	SaveReports(dir string, reports []*services.Report) ([]string, error)
	LoadReports(dir string) ([]*services.Report, error)
	Close()
}

// FileManager writes one report file per plugin and reads them back.
type FileManager struct {
	compressor interfaces.CompressorInterface
	compress   bool
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		compressor: compressor,
		compress:   conf.Output.Compress,
		logger:     logger,
		metrics:    metrics,
	}
}

// ReportFileName is where the report of plugin is written.
func ReportFileName(plugin string, compressed bool) string {
	if compressed {
		return plugin + compressedReportExt
	}
	return plugin + reportExt
}

// SaveReports writes every report into dir. A report that fails to write
// does not stop the others; the paths written are returned either way.
func (f *FileManager) SaveReports(dir string, reports []*services.Report) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var (
		written []string
		errs    error
	)
	for _, r := range reports {
		path := filepath.Join(dir, ReportFileName(r.Plugin, f.compress))
		if err := f.saveReport(path, r); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("report %s: %w", r.Plugin, err))
			continue
		}
		f.logger.Infof(providers.TypeExport, "Report %s written to %s", r.Plugin, path)
		written = append(written, path)
	}

	f.metrics.ObserveStageDuration("export", time.Since(start))
	return written, errs
}

func (f *FileManager) saveReport(fileName string, r *services.Report) error {
	data, err := json.Marshal(r.Snapshot())
	if err != nil {
		return err
	}
	if f.compress {
		data, err = f.compressor.Compress(data)
		if err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadReports reads every report file in dir, compressed or not. Reports are
// returned sorted by plugin; when one plugin has both forms, the later file
// name wins.
func (f *FileManager) LoadReports(dir string) ([]*services.Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byPlugin := make(map[string]*services.Report)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		compressed := strings.HasSuffix(name, compressedReportExt)
		if !compressed && !strings.HasSuffix(name, reportExt) {
			continue
		}

		r, err := f.loadReport(filepath.Join(dir, name), compressed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if _, ok := byPlugin[r.Plugin]; ok {
			f.logger.Warnf(providers.TypeExport, "Report %s found twice, using %s", r.Plugin, name)
		}
		byPlugin[r.Plugin] = r
	}

	reports := make([]*services.Report, 0, len(byPlugin))
	for _, r := range byPlugin {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Plugin < reports[j].Plugin
	})
	f.logger.Infof(providers.TypeExport, "Loaded %d reports from %s", len(reports), dir)
	return reports, nil
}

func (f *FileManager) loadReport(path string, compressed bool) (*services.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if compressed {
		data, err = f.compressor.Decompress(data)
		if err != nil {
			return nil, err
		}
	}

	var snap services.ReportSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return services.NewReportFromSnapshot(&snap)
}
