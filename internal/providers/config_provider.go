package providers

import (
	"fmt"
	"net"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"ircstat/internal/structures"
)

const (
	DefaultFilenameRegex = `#?(?P<channel>[a-z]+)_(?P<date>\d{8}).log`
	DefaultDateFormat    = `%Y%m%d`
	DefaultTimeFormat    = `%H:%M`

	DefaultMessageRegex = `\[(?P<time>\d\d:\d\d)\] <[~&@%+]?(?P<nick>[^>\s]+)> (?P<content>.*)`
	DefaultActionRegex  = `\[(?P<time>\d\d:\d\d)\] \* (?P<nick>\S+) (?P<content>.*)`
	DefaultJoinRegex    = `\[(?P<time>\d\d:\d\d)\] \*\*\* Joins: (?P<nick>\S+) \((?P<hostmask>[^)]*)\)`
	DefaultPartRegex    = `\[(?P<time>\d\d:\d\d)\] \*\*\* Parts: (?P<nick>\S+) \((?P<hostmask>[^)]*)\)(?: \((?P<reason>.*)\))?`
	DefaultQuitRegex    = `\[(?P<time>\d\d:\d\d)\] \*\*\* Quits: (?P<nick>\S+) \((?P<hostmask>[^)]*)\)(?: \((?P<reason>.*)\))?`
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)

	v.SetDefault("parser.filenameRegex", DefaultFilenameRegex)
	v.SetDefault("parser.filenameDateFormat", DefaultDateFormat)
	v.SetDefault("parser.timeFormat", DefaultTimeFormat)
	v.SetDefault("parser.encoding", "utf-8")
	v.SetDefault("parser.include", []string{"**"})
	v.SetDefault("parser.events.message", DefaultMessageRegex)
	v.SetDefault("parser.events.action", DefaultActionRegex)
	v.SetDefault("parser.events.join", DefaultJoinRegex)
	v.SetDefault("parser.events.part", DefaultPartRegex)
	v.SetDefault("parser.events.quit", DefaultQuitRegex)

	v.SetDefault("workers.parse", runtime.NumCPU())
	v.SetDefault("workers.aggregate", runtime.NumCPU())

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.compress", true)
	v.SetDefault("output.level", "better")

	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 16)
}

// NewConfigProvider reads the yaml file named by the flags on top of the
// built-in defaults. An empty config path runs on defaults alone.
func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	v.BindEnv("logger.level", "IRCSTAT_LOG_LEVEL")
	v.BindEnv("output.dir", "IRCSTAT_OUTPUT_DIR")
	v.BindEnv("workers.parse", "IRCSTAT_PARSE_WORKERS")
	v.BindEnv("cache.enabled", "IRCSTAT_CACHE_ENABLED")
	v.BindEnv("cache.size", "IRCSTAT_CACHE_SIZE")

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if flags.OutputDir != "" {
		conf.Output.Dir = flags.OutputDir
	}
	if flags.Refresh > 0 {
		conf.Refresh.Interval = flags.Refresh
	}
	if flags.Listen != "" {
		host, port, err := net.SplitHostPort(flags.Listen)
		if err != nil {
			return nil, fmt.Errorf("listen: %w", err)
		}
		if conf.WebServer.Port, err = cast.ToIntE(port); err != nil {
			return nil, fmt.Errorf("listen: invalid port %q", port)
		}
		if host != "" {
			conf.WebServer.Host = host
		}
	}

	cnfValidator := NewCnfValidator(&conf)
	if err := cnfValidator.Validate(); err != nil {
		return nil, err
	}

	conf.AppName = "ircstat"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
