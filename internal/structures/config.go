package structures

import "time"

type Server struct {
	Host string `yaml:"host" mapstructure:"host" validate:"required"`
	Port int    `yaml:"port" mapstructure:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" mapstructure:"mode" validate:"uint"`
	Dir   string `yaml:"dir" mapstructure:"dir"`
}

// EventPatterns holds one regex per event kind. The struct field order is the
// matching priority: message, action, join, part, quit.
type EventPatterns struct {
	Message string `yaml:"message" mapstructure:"message" validate:"required"`
	Action  string `yaml:"action" mapstructure:"action" validate:"required"`
	Join    string `yaml:"join" mapstructure:"join" validate:"required"`
	Part    string `yaml:"part" mapstructure:"part" validate:"required"`
	Quit    string `yaml:"quit" mapstructure:"quit" validate:"required"`
}

type ParserConfig struct {
	FilenameRegex      string        `yaml:"filenameRegex" mapstructure:"filenameRegex" validate:"required"`
	FilenameDateFormat string        `yaml:"filenameDateFormat" mapstructure:"filenameDateFormat" validate:"required"`
	TimeFormat         string        `yaml:"timeFormat" mapstructure:"timeFormat" validate:"required"`
	Encoding           string        `yaml:"encoding" mapstructure:"encoding" validate:"required"`
	Include            []string      `yaml:"include" mapstructure:"include"`
	Events             EventPatterns `yaml:"events" mapstructure:"events"`
}

// AliasRule maps every nick fully matching Pattern to Canonical.
type AliasRule struct {
	Pattern   string `yaml:"pattern" mapstructure:"pattern" validate:"required"`
	Canonical string `yaml:"canonical" mapstructure:"canonical" validate:"required"`
}

type IdentityConfig struct {
	Bots    []string    `yaml:"bots" mapstructure:"bots"`
	Aliases []AliasRule `yaml:"aliases" mapstructure:"aliases"`
	Ignore  []string    `yaml:"ignore" mapstructure:"ignore"`
}

type PluginsConfig struct {
	Blacklist []string `yaml:"blacklist" mapstructure:"blacklist"`
}

type WorkersConfig struct {
	Parse     int `yaml:"parse" mapstructure:"parse" validate:"required|uint|min:1"`
	Aggregate int `yaml:"aggregate" mapstructure:"aggregate" validate:"required|uint|min:1"`
}

type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Compress bool   `yaml:"compress" mapstructure:"compress"`
	Level    string `yaml:"level" mapstructure:"level"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Size    int           `yaml:"size" mapstructure:"size"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RefreshConfig drives the periodic rebuild in serve mode. A zero interval
// serves the reports built at startup.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	Persist  bool          `yaml:"persist" mapstructure:"persist"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Logger    LoggerConfig   `yaml:"logger" mapstructure:"logger"`
	Parser    ParserConfig   `yaml:"parser" mapstructure:"parser"`
	Identity  IdentityConfig `yaml:"identity" mapstructure:"identity"`
	Plugins   PluginsConfig  `yaml:"plugins" mapstructure:"plugins"`
	Workers   WorkersConfig  `yaml:"workers" mapstructure:"workers"`
	Output    OutputConfig   `yaml:"output" mapstructure:"output"`
	WebServer Server         `yaml:"webServer" mapstructure:"webServer"`
	Cache     CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Refresh   RefreshConfig  `yaml:"refresh" mapstructure:"refresh"`
}
