package parser

import (
	"go.uber.org/atomic"

	"ircstat/internal/providers"
)

// Diagnostics counts what the parser saw. Lines that were ignored are counted
// both as matched and as ignored.
type Diagnostics struct {
	linesMatched   atomic.Int64
	linesUnmatched atomic.Int64
	linesIgnored   atomic.Int64
	linesInvalid   atomic.Int64
	filesParsed    atomic.Int64
	filesSkipped   atomic.Int64
	filesFailed    atomic.Int64
	pathsMissing   atomic.Int64
}

type DiagnosticsSummary struct {
	LinesMatched   int64 `json:"lines_matched"`
	LinesUnmatched int64 `json:"lines_unmatched"`
	LinesIgnored   int64 `json:"lines_ignored"`
	LinesInvalid   int64 `json:"lines_invalid"`
	FilesParsed    int64 `json:"files_parsed"`
	FilesSkipped   int64 `json:"files_skipped"`
	FilesFailed    int64 `json:"files_failed"`
	PathsMissing   int64 `json:"paths_missing"`
}

func (d *Diagnostics) line(result string) {
	switch result {
	case providers.LineMatched:
		d.linesMatched.Inc()
	case providers.LineIgnored:
		d.linesMatched.Inc()
		d.linesIgnored.Inc()
	case providers.LineUnmatched:
		d.linesUnmatched.Inc()
	case providers.LineInvalid:
		d.linesInvalid.Inc()
	}
}

func (d *Diagnostics) file(result string) {
	switch result {
	case providers.FileParsed:
		d.filesParsed.Inc()
	case providers.FileSkipped:
		d.filesSkipped.Inc()
	case providers.FileFailed:
		d.filesFailed.Inc()
	}
}

func (d *Diagnostics) Summary() DiagnosticsSummary {
	return DiagnosticsSummary{
		LinesMatched:   d.linesMatched.Load(),
		LinesUnmatched: d.linesUnmatched.Load(),
		LinesIgnored:   d.linesIgnored.Load(),
		LinesInvalid:   d.linesInvalid.Load(),
		FilesParsed:    d.filesParsed.Load(),
		FilesSkipped:   d.filesSkipped.Load(),
		FilesFailed:    d.filesFailed.Load(),
		PathsMissing:   d.pathsMissing.Load(),
	}
}
