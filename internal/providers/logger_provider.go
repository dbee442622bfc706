package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"ircstat/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeParser
	TypeIdentity
	TypeAggregate
	TypeExport
	TypeHttp
)

const logFileName = "ircstat.log"

func (t TypeEnum) String() string {
	switch t {
	case TypeParser:
		return "parser"
	case TypeIdentity:
		return "identity"
	case TypeAggregate:
		return "aggregate"
	case TypeExport:
		return "export"
	case TypeHttp:
		return "http"
	default:
		return "app"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	logger zerolog.Logger
	file   *os.File
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Error().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Warn().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Debug().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.logger.Info().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Fatal().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Close() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

// NewLogProvider logs to stderr and, when logger.dir is set, additionally to
// a file in that directory. Debug mode forces the debug level.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	provider := &LogProvider{}
	if conf.Logger.Dir != "" {
		mode := os.FileMode(conf.Logger.Mode)
		if mode == 0 {
			mode = 0644
		}
		file, err := os.OpenFile(filepath.Join(conf.Logger.Dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		provider.file = file
		writers = append(writers, file)
	}

	provider.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return provider, nil
}
