package structures

import (
	"net/http"
	"time"
)

// CliFlags carries what the command line contributes on top of the config file.
type CliFlags struct {
	ConfigPath string
	EnvFile    string
	DebugMode  bool
	Inputs     []string
	OutputDir  string
	Listen     string
	FromDir    string
	Refresh    time.Duration
}

type Route struct {
	Url     string
	Handler http.Handler
}
