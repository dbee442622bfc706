package parser

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"ircstat/internal/models"
	"ircstat/internal/providers"
	"ircstat/internal/worker"
)

type logFile struct {
	path    string
	channel string
	date    time.Time
}

// matchFilename extracts channel and date from the base name of path.
func (p *EventParser) matchFilename(path string) (logFile, bool) {
	name := filepath.Base(path)
	match := p.filenameRe.FindStringSubmatch(name)
	if match == nil {
		p.logger.Debugf(providers.TypeParser, "Skipping %s: name does not match", path)
		return logFile{}, false
	}

	date, err := time.Parse(p.dateLayout, match[p.dateIdx])
	if err != nil {
		p.logger.Warnf(providers.TypeParser, "Skipping %s: bad date %q: %v", path, match[p.dateIdx], err)
		return logFile{}, false
	}

	return logFile{
		path:    path,
		channel: match[p.channelIdx],
		date:    models.DateOf(date),
	}, true
}

// listFiles returns every regular file under root matching one of the
// include globs, as paths joined onto root.
func (p *EventParser) listFiles(root string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	fsys := os.DirFS(root)

	for _, pattern := range p.include {
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			if _, ok := seen[path]; ok {
				return nil
			}
			seen[path] = struct{}{}
			files = append(files, filepath.Join(root, filepath.FromSlash(path)))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// collect lists candidate files of every input path. Missing inputs are
// logged and counted, never fatal.
func (p *EventParser) collect(paths []string) []logFile {
	var files []logFile
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			p.diag.pathsMissing.Inc()
			p.logger.Errorf(providers.TypeParser, "Input %s: %v", root, err)
			continue
		}
		if !info.IsDir() {
			p.diag.pathsMissing.Inc()
			p.logger.Errorf(providers.TypeParser, "Input %s is not a directory", root)
			continue
		}

		candidates, err := p.listFiles(root)
		if err != nil {
			p.diag.pathsMissing.Inc()
			p.logger.Errorf(providers.TypeParser, "Listing %s: %v", root, err)
			continue
		}

		for _, path := range candidates {
			lf, ok := p.matchFilename(path)
			if !ok {
				p.diag.file(providers.FileSkipped)
				p.metrics.IncFiles(providers.FileSkipped)
				continue
			}
			files = append(files, lf)
		}
	}

	// merge order, and with it the winner of a duplicate key, is path order
	sort.Slice(files, func(i, j int) bool {
		return files[i].path < files[j].path
	})
	return files
}

// Discover parses every log file under paths into conversations keyed by
// channel and date. When two files map to the same key the one with the
// greater path wins. A cancelled ctx discards everything parsed so far.
func (p *EventParser) Discover(ctx context.Context, paths []string) (models.ConversationSet, error) {
	start := time.Now()
	files := p.collect(paths)
	p.logger.Infof(providers.TypeParser, "Found %d log files in %d inputs", len(files), len(paths))

	results := worker.Run(ctx, files, p.workers, func(ctx context.Context, lf logFile) ([]*models.Event, error) {
		return p.parseFile(lf.path, lf.date)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conversations := make(models.ConversationSet)
	for _, res := range results {
		lf := res.Item
		if res.Err != nil {
			p.diag.file(providers.FileFailed)
			p.metrics.IncFiles(providers.FileFailed)
			p.logger.Warnf(providers.TypeParser, "Skipping unreadable file: %v", res.Err)
			continue
		}

		p.diag.file(providers.FileParsed)
		p.metrics.IncFiles(providers.FileParsed)

		prev := conversations.Put(models.NewConversation(lf.channel, lf.date, lf.path, res.Value))
		if prev != nil {
			p.logger.Warnf(providers.TypeParser, "%s replaces %s for %s on %s",
				lf.path, prev.Source, lf.channel, models.FormatDate(lf.date))
		}
	}

	p.metrics.ObserveStageDuration("parse", time.Since(start))
	return conversations, nil
}
