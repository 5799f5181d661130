// Package sqltext compiles statement SQL templates into executable text.
//
// Templates carry named parameter markers of the form #{property} or
// #{property,mode=OUT}. Compilation replaces every marker with a positional
// placeholder and records the markers as ordered parameter mappings; the
// declaration order is what drives both argument binding and cache
// fingerprint construction downstream.
//
// All values are parameterized, never interpolated.
package sqltext

import (
	"fmt"
	"strings"

	"github.com/roach88/remap/internal/mapping"
)

const (
	markerOpen  = "#{"
	markerClose = "}"
)

// Compile resolves a SQL template: markers become ? placeholders and their
// declarations become parameter mappings in order of appearance.
func Compile(template string) (string, []mapping.ParameterMapping, error) {
	var sql strings.Builder
	var mappings []mapping.ParameterMapping

	rest := template
	for {
		open := strings.Index(rest, markerOpen)
		if open < 0 {
			sql.WriteString(rest)
			break
		}
		sql.WriteString(rest[:open])
		rest = rest[open+len(markerOpen):]

		closeIdx := strings.Index(rest, markerClose)
		if closeIdx < 0 {
			return "", nil, fmt.Errorf("unterminated parameter marker in %q", template)
		}
		pm, err := parseMarker(rest[:closeIdx])
		if err != nil {
			return "", nil, err
		}
		mappings = append(mappings, pm)
		sql.WriteString("?")
		rest = rest[closeIdx+len(markerClose):]
	}
	return sql.String(), mappings, nil
}

// parseMarker parses the inside of a #{...} marker: a property name with an
// optional mode attribute.
func parseMarker(body string) (mapping.ParameterMapping, error) {
	pm := mapping.ParameterMapping{Mode: mapping.ModeIn}

	parts := strings.Split(body, ",")
	pm.Property = strings.TrimSpace(parts[0])
	if pm.Property == "" {
		return pm, fmt.Errorf("empty parameter marker %q", markerOpen+body+markerClose)
	}

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		name, value, ok := strings.Cut(attr, "=")
		if !ok {
			return pm, fmt.Errorf("malformed attribute %q in marker %q", attr, body)
		}
		switch strings.TrimSpace(name) {
		case "mode":
			mode := mapping.ParameterMode(strings.ToUpper(strings.TrimSpace(value)))
			if !mapping.ValidParameterModes[mode] {
				return pm, fmt.Errorf("invalid parameter mode %q in marker %q", value, body)
			}
			pm.Mode = mode
		default:
			return pm, fmt.Errorf("unknown attribute %q in marker %q", name, body)
		}
	}
	return pm, nil
}
