// Package strptime turns the C style time formats of the config into Go
// reference layouts.
package strptime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/observiq/ctimefmt"
)

var errEmptyFormat = errors.New("empty time format")

// Layout converts a format such as "%Y%m%d" into the Go layout "20060102".
// Unknown directives and a trailing bare % are errors.
func Layout(format string) (string, error) {
	if format == "" {
		return "", errEmptyFormat
	}
	if strings.HasSuffix(strings.ReplaceAll(format, "%%", ""), "%") {
		return "", fmt.Errorf("time format %q ends with a bare %%", format)
	}
	layout, err := ctimefmt.ToNative(format)
	if err != nil {
		return "", fmt.Errorf("time format %q: %w", format, err)
	}
	return layout, nil
}
