package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"ircstat/internal/decoder"
	"ircstat/internal/identity"
	"ircstat/internal/models"
	"ircstat/internal/providers"
	"ircstat/internal/strptime"
	"ircstat/internal/structures"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

type EventParserInterface interface {
	ParseFile(path string) ([]*models.Event, error)
	ParseLine(line string) (*models.Event, string)
	Discover(ctx context.Context, paths []string) (models.ConversationSet, error)
	Diagnostics() DiagnosticsSummary
}

type rule struct {
	kind     models.EventKind
	re       *regexp.Regexp
	nick     int
	time     int
	content  int
	reason   int
	hostmask int
}

type EventParser struct {
	rules      []rule
	timeLayout string
	encoding   encoding.Encoding
	filenameRe *regexp.Regexp
	channelIdx int
	dateIdx    int
	dateLayout string
	include    []string
	workers    int

	resolver identity.ResolverInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	diag     *Diagnostics
}

// anchored makes pattern match from the start of the input only.
func anchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)`)
}

func newRule(kind models.EventKind, pattern string) (rule, error) {
	re, err := anchored(pattern)
	if err != nil {
		return rule{}, fmt.Errorf("parser.events.%s: %w", kind, err)
	}
	r := rule{
		kind:     kind,
		re:       re,
		nick:     re.SubexpIndex("nick"),
		time:     re.SubexpIndex("time"),
		content:  re.SubexpIndex("content"),
		reason:   re.SubexpIndex("reason"),
		hostmask: re.SubexpIndex("hostmask"),
	}
	if r.nick < 0 || r.time < 0 {
		return rule{}, fmt.Errorf("parser.events.%s: pattern needs the nick and time groups", kind)
	}
	return r, nil
}

func NewEventParser(conf *structures.Config, resolver identity.ResolverInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (*EventParser, error) {
	events := conf.Parser.Events
	patterns := map[models.EventKind]string{
		models.KindMessage: events.Message,
		models.KindAction:  events.Action,
		models.KindJoin:    events.Join,
		models.KindPart:    events.Part,
		models.KindQuit:    events.Quit,
	}

	p := &EventParser{
		include:  conf.Parser.Include,
		workers:  conf.Workers.Parse,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		diag:     &Diagnostics{},
	}

	for _, kind := range models.EventKinds {
		r, err := newRule(kind, patterns[kind])
		if err != nil {
			return nil, err
		}
		p.rules = append(p.rules, r)
	}

	var err error
	if p.timeLayout, err = strptime.Layout(conf.Parser.TimeFormat); err != nil {
		return nil, fmt.Errorf("parser.timeFormat: %w", err)
	}
	if p.dateLayout, err = strptime.Layout(conf.Parser.FilenameDateFormat); err != nil {
		return nil, fmt.Errorf("parser.filenameDateFormat: %w", err)
	}

	enc, err := decoder.LookupEncoding(conf.Parser.Encoding)
	if err != nil {
		return nil, fmt.Errorf("parser.encoding: %w", err)
	}
	p.encoding = enc

	p.filenameRe, err = anchored(conf.Parser.FilenameRegex)
	if err != nil {
		return nil, fmt.Errorf("parser.filenameRegex: %w", err)
	}
	p.channelIdx = p.filenameRe.SubexpIndex("channel")
	p.dateIdx = p.filenameRe.SubexpIndex("date")
	if p.channelIdx < 0 || p.dateIdx < 0 {
		return nil, fmt.Errorf("parser.filenameRegex: pattern needs the channel and date groups")
	}

	if len(p.include) == 0 {
		p.include = []string{"**"}
	}

	return p, nil
}

func (p *EventParser) Diagnostics() DiagnosticsSummary {
	return p.diag.Summary()
}

func (p *EventParser) record(result string) {
	p.diag.line(result)
	if result == providers.LineIgnored {
		p.metrics.IncLines(providers.LineMatched)
	}
	p.metrics.IncLines(result)
}

// ParseLine classifies one line and records the outcome. The event is nil
// unless the result is LineMatched.
func (p *EventParser) ParseLine(line string) (*models.Event, string) {
	e, result := p.parseLine(line, time.Time{})
	p.record(result)
	return e, result
}

func group(match []string, idx int) string {
	if idx < 0 {
		return ""
	}
	return match[idx]
}

func (p *EventParser) parseLine(line string, date time.Time) (*models.Event, string) {
	for _, r := range p.rules {
		match := r.re.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		nick := p.resolver.Canonical(match[r.nick])
		if p.resolver.IsIgnored(nick) {
			return nil, providers.LineIgnored
		}

		clock, err := time.Parse(p.timeLayout, match[r.time])
		if err != nil {
			p.logger.Debugf(providers.TypeParser, "Bad time %q in line %q: %v", match[r.time], line, err)
			return nil, providers.LineInvalid
		}

		return &models.Event{
			Kind: r.kind,
			Time: time.Date(date.Year(), date.Month(), date.Day(),
				clock.Hour(), clock.Minute(), clock.Second(), 0, clock.Location()),
			Nick:     nick,
			Content:  group(match, r.content),
			Reason:   group(match, r.reason),
			Hostmask: group(match, r.hostmask),
		}, providers.LineMatched
	}
	return nil, providers.LineUnmatched
}

// ParseFile reads path in the configured encoding and returns its events in
// line order. Event times carry no date.
func (p *EventParser) ParseFile(path string) ([]*models.Event, error) {
	return p.parseFile(path, time.Time{})
}

func (p *EventParser) parseFile(path string, date time.Time) ([]*models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := p.parseReader(f, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

func (p *EventParser) parseReader(r io.Reader, date time.Time) ([]*models.Event, error) {
	checkUTF8 := decoder.IsUTF8(p.encoding)
	if !checkUTF8 {
		r = decoder.NewReader(p.encoding, r)
	}

	br := bufio.NewReaderSize(r, initialBufferSize)

	var (
		events    []*models.Event
		buf       []byte
		oversized bool
	)
	first := true
	for {
		frag, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !oversized && len(buf)+len(frag) > maxLineSize {
			oversized = true
		}
		if !oversized {
			buf = append(buf, frag...)
		}
		if isPrefix {
			continue
		}

		// An oversized line is dropped on its own, the rest of the file is kept.
		if oversized {
			oversized = false
			buf = buf[:0]
			first = false
			p.logger.Debugf(providers.TypeParser, "Skipping line longer than %d bytes", maxLineSize)
			p.record(providers.LineInvalid)
			continue
		}
		line := strings.TrimSuffix(string(buf), "\r")
		buf = buf[:0]
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if line == "" {
			continue
		}
		if checkUTF8 && !utf8.ValidString(line) {
			p.record(providers.LineInvalid)
			continue
		}

		e, result := p.parseLine(line, date)
		p.record(result)
		if e != nil {
			events = append(events, e)
		}
	}
	return events, nil
}
