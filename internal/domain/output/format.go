// Package output renders a generated API key and the server configuration
// that accepts it in the format the operator asked for.
package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OutputFormat selects how the configuration fragment is rendered.
type OutputFormat int

const (
	// Json renders the fragment as a JSON settings document.
	Json OutputFormat = iota
	// Text renders labeled, human-readable lines.
	Text
	// Cmd renders Windows command shell "set" statements.
	Cmd
	// PowerShell renders PowerShell "$env:" assignments.
	PowerShell
	// Shell renders POSIX shell "export" statements.
	Shell
)

// formatNames maps each format to its display name.
var formatNames = map[OutputFormat]string{
	Json:       "Json",
	Text:       "Text",
	Cmd:        "Cmd",
	PowerShell: "PowerShell",
	Shell:      "Shell",
}

// Formats returns every output format in declaration order.
func Formats() []OutputFormat {
	return []OutputFormat{Json, Text, Cmd, PowerShell, Shell}
}

// String returns the format's display name, or its number if unknown.
func (f OutputFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return strconv.Itoa(int(f))
}

// IsValid returns true if f is one of the five output formats.
func (f OutputFormat) IsValid() bool {
	_, ok := formatNames[f]
	return ok
}

// ErrUnknownFormat is matched by every UnknownFormatError.
var ErrUnknownFormat = errors.New("unknown output format")

// UnknownFormatError reports a format outside the OutputFormat enumeration.
// Value is the offending name, or the number of an out-of-range OutputFormat.
type UnknownFormatError struct {
	Value string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownFormat, e.Value)
}

// Is reports whether target is ErrUnknownFormat.
func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}

// ParseOutputFormat parses a format name, ignoring case.
func ParseOutputFormat(name string) (OutputFormat, error) {
	trimmed := strings.TrimSpace(name)
	for f, n := range formatNames {
		if strings.EqualFold(n, trimmed) {
			return f, nil
		}
	}
	return 0, &UnknownFormatError{Value: name}
}

// Names returns the lower-case names of every format, for flag help.
func Names() []string {
	out := make([]string, 0, len(formatNames))
	for _, f := range Formats() {
		out = append(out, strings.ToLower(f.String()))
	}
	return out
}
