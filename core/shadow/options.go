// Package shadow decorates a schema with case-normalized shadow fields.
// For each designated field it derives a parallel field holding a lowercased
// copy of the value and installs lifecycle hooks that keep the shadow
// synchronized on write and rewrite equality conditions on read, so lookups
// behave case-insensitively while the original field keeps its casing.
package shadow

import (
	"fmt"
	"strings"
)

// DefaultPrefix is prepended to a field's path to derive its shadow path
// when no prefix is configured.
const DefaultPrefix = "__"

// Options configures an installation. Pointer fields distinguish "not set"
// from an explicit zero value; unset fields take their documented default.
type Options struct {
	// Prefix is prepended to the original path. Default "__".
	Prefix *string
	// Suffix is appended to the original path. Default "".
	Suffix *string
	// Select controls whether shadow fields appear in default query
	// projections. Default false.
	Select bool
	// Paths designates fields to shadow regardless of their options. It
	// accepts a comma-separated string, a []string, or a []any of strings;
	// tokens are trimmed of surrounding whitespace.
	Paths any
	// UsePathOption controls whether a field's own CaseInsensitive option
	// also designates it for shadowing. Default true.
	UsePathOption *bool
}

// config is an Options record merged with defaults, field by field.
type config struct {
	prefix        string
	suffix        string
	selectShadow  bool
	paths         []string
	usePathOption bool
}

func (o Options) normalize() (config, error) {
	cfg := config{
		prefix:        DefaultPrefix,
		suffix:        "",
		selectShadow:  o.Select,
		usePathOption: true,
	}
	if o.Prefix != nil {
		cfg.prefix = *o.Prefix
	}
	if o.Suffix != nil {
		cfg.suffix = *o.Suffix
	}
	if o.UsePathOption != nil {
		cfg.usePathOption = *o.UsePathOption
	}

	paths, err := normalizePaths(o.Paths)
	if err != nil {
		return config{}, err
	}
	cfg.paths = paths
	return cfg, nil
}

func (c config) requested(path string) bool {
	for _, p := range c.paths {
		if p == path {
			return true
		}
	}
	return false
}

// normalizePaths converts the accepted Paths forms into a list of trimmed
// field names. Empty tokens are dropped.
func normalizePaths(v any) ([]string, error) {
	switch paths := v.(type) {
	case nil:
		return nil, nil
	case string:
		return splitTrimmed(strings.Split(paths, ",")), nil
	case []string:
		return splitTrimmed(paths), nil
	case []any:
		tokens := make([]string, 0, len(paths))
		for _, p := range paths {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("paths list may only contain strings, got %T", p)
			}
			tokens = append(tokens, s)
		}
		return splitTrimmed(tokens), nil
	default:
		return nil, fmt.Errorf("paths must be a comma-separated string or a list of strings, got %T", v)
	}
}

func splitTrimmed(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// StringPtr returns a pointer to a string, for use in Options literals.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to a bool, for use in Options literals.
func BoolPtr(b bool) *bool {
	return &b
}
