package providers

import (
	"fmt"
	"regexp"

	"github.com/gookit/validate"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"

	"ircstat/internal/decoder"
	"ircstat/internal/strptime"
	"ircstat/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags first, then everything the parser and the
// identity resolver will compile later, so that a bad config aborts before
// any input is read.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	var errs error
	errs = multierr.Append(errs, requireGroups("parser.filenameRegex", cv.conf.Parser.FilenameRegex, "channel", "date"))

	events := cv.conf.Parser.Events
	for _, p := range []struct{ key, pattern string }{
		{"parser.events.message", events.Message},
		{"parser.events.action", events.Action},
		{"parser.events.join", events.Join},
		{"parser.events.part", events.Part},
		{"parser.events.quit", events.Quit},
	} {
		errs = multierr.Append(errs, requireGroups(p.key, p.pattern, "nick", "time"))
	}

	if _, err := strptime.Layout(cv.conf.Parser.FilenameDateFormat); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("parser.filenameDateFormat: %w", err))
	}
	if _, err := strptime.Layout(cv.conf.Parser.TimeFormat); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("parser.timeFormat: %w", err))
	}
	if _, err := decoder.LookupEncoding(cv.conf.Parser.Encoding); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("parser.encoding: %w", err))
	}

	if level := cv.conf.Output.Level; level != "" {
		if ok, _ := zstd.EncoderLevelFromString(level); !ok {
			errs = multierr.Append(errs, fmt.Errorf("output.level: unknown zstd level %q", level))
		}
	}

	for i, rule := range cv.conf.Identity.Aliases {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("identity.aliases[%d]: %w", i, err))
		}
	}
	for i, pattern := range cv.conf.Identity.Ignore {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("identity.ignore[%d]: %w", i, err))
		}
	}

	return errs
}

func requireGroups(key, pattern string, groups ...string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for _, group := range groups {
		if re.SubexpIndex(group) < 0 {
			return fmt.Errorf("%s: missing named group %q", key, group)
		}
	}
	return nil
}
