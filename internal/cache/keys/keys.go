// Package keys builds deterministic cache keys for zone payloads.
package keys

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const ZoneNamespace = "zones"

// Key returns "{ns}:{res}:{cell}:{params}:f={xxhash}". params is a list of
// k=v pairs separated by '&' or ','; order and surrounding whitespace do not
// affect the key.
func Key(ns string, res int, cell, params string) string {
	nsSafe := sanitize(strings.TrimSpace(ns), false)
	cellSafe := sanitize(strings.TrimSpace(cell), false)
	norm := normalizeParams(params)
	paramSafe := sanitize(norm, true)

	const maxParamTextLen = 160
	if len(paramSafe) > maxParamTextLen {
		paramSafe = paramSafe[:maxParamTextLen]
	}

	sum := xxhash.Sum64String(norm)
	return fmt.Sprintf("%s:%d:%s:%s:f=%016x", nsSafe, res, cellSafe, paramSafe, sum)
}

// ZoneKey is the key for a zone query snapped to an H3 cell with a bucketed radius in meters.
func ZoneKey(res int, cell string, radiusMeters int) string {
	return Key(ZoneNamespace, res, cell, "r="+strconv.Itoa(radiusMeters))
}

func normalizeParams(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '&' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if ok {
			out = append(out, k+"="+strings.TrimSpace(v))
		} else {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return strings.Join(out, ",")
}

// sanitize keeps [A-Za-z0-9:_-] (plus '=' and ',' for params), maps whitespace
// to '_' and anything else to '-', collapsing repeats.
func sanitize(s string, params bool) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case unicode.IsSpace(r) && r <= unicode.MaxASCII:
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		case params && (r == '=' || r == ','):
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
