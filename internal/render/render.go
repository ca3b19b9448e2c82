// internal/render/render.go

// Package render provides the default mapping-template renderer: Go
// text/template over a flat source record, producing a JSON document that
// parses into a nested record for validation.
//
// The correction loop only depends on the correction.Renderer interface;
// this implementation exists so the CLI works end to end. Transform
// functions mirror the logistics helpers shipping templates rely on
// (truncation for carrier length limits, digit extraction for phones,
// postal-code formatting, weight rounding).
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/parcelforge/parcelforge/internal/types"
)

// Engine renders mapping templates. Safe for concurrent use; each Render
// call parses and executes independently with no shared state.
type Engine struct{}

// NewEngine returns a template renderer with the logistics function set.
func NewEngine() *Engine {
	return &Engine{}
}

// Render applies tmpl to record and parses the output as a JSON document.
// Parse failures, execution failures, and non-JSON output all wrap
// types.ErrRenderFailed so the loop can account them as one failed attempt.
func (e *Engine) Render(tmpl string, record types.Record) (types.Record, error) {
	t, err := template.New("mapping").
		Option("missingkey=zero").
		Funcs(transformFuncs()).
		Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", types.ErrRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, record); err != nil {
		return nil, fmt.Errorf("%w: execute: %v", types.ErrRenderFailed, err)
	}

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("%w: output is not a JSON object: %v", types.ErrRenderFailed, err)
	}
	return out, nil
}

// transformFuncs builds the template function map. Functions take the value
// as the last parameter so they compose in pipelines:
// {{ .recipient_name | default "Unknown" | truncate 35 }}
func transformFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(n int, v any) string {
			s := asString(v)
			if n >= 0 && len(s) > n {
				return s[:n]
			}
			return s
		},
		"default": func(def, v any) any {
			if v == nil || asString(v) == "" {
				return def
			}
			return v
		},
		"digits": func(v any) string {
			var b strings.Builder
			for _, r := range asString(v) {
				if r >= '0' && r <= '9' {
					b.WriteRune(r)
				}
			}
			return b.String()
		},
		"zipcode": func(v any) string {
			d := strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, asString(v))
			if len(d) >= 9 {
				return d[:5] + "-" + d[5:9]
			}
			if len(d) >= 5 {
				return d[:5]
			}
			return d
		},
		"round": func(places int, v any) float64 {
			n, ok := asFloat(v)
			if !ok {
				return 0
			}
			scale := math.Pow10(places)
			return math.Round(n*scale) / scale
		},
		"upper": func(v any) string {
			return strings.ToUpper(asString(v))
		},
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}
