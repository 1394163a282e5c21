// Package commands provides CLI command handlers for resmerge.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/resmerge/internal/cliutil"
	"github.com/erraggy/resmerge/internal/pipeline"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
// Returns an error if marshaling fails.
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	cliutil.Writef(w, "%s\n", strings.TrimRight(string(bytes), "\n"))
	return nil
}

// setFlag collects repeated "--set name=root[,root...]" values in order.
type setFlag []pipeline.SetSpec

// String returns the string representation of the flag value
func (s *setFlag) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(*s))
	for _, spec := range *s {
		parts = append(parts, spec.Name+"="+strings.Join(spec.Roots, ","))
	}
	return strings.Join(parts, " ")
}

// Set parses one set definition and appends it
func (s *setFlag) Set(value string) error {
	spec, err := pipeline.ParseSetSpec(value)
	if err != nil {
		return err
	}
	*s = append(*s, spec)
	return nil
}

// writeResult prints a merge or update result.
func writeResult(w io.Writer, res *pipeline.Result, format string) error {
	if format != FormatText {
		return OutputStructured(w, res, format)
	}
	mode := "full"
	if res.Incremental {
		mode = "incremental"
	}
	cliutil.Writef(w, "Merge mode: %s\n", mode)
	if res.Incremental {
		cliutil.Writef(w, "Change events: %d\n", len(res.Events))
	}
	cliutil.Writef(w, "Resources: %d\n", res.Resources)
	cliutil.WriteList(w, "Written", "+", res.Written)
	cliutil.WriteList(w, "Deleted", "-", res.Deleted)
	return nil
}
