// Package sanitizer reduces arbitrary canvas state to a safe, JSON-serializable settings document.
//
// The only entry point is Sanitize. It never returns an error: when the input cannot be
// copied (cycles, runaway nesting, a non-object root, a panic while walking it) a minimal
// fallback document is returned instead and the result is flagged.
package sanitizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Document is a sanitized settings document. It only holds JSON primitives
// (string, float64, bool, nil), []any and map[string]any.
type Document map[string]any

// Result is the outcome of Sanitize.
//
// Fallback reports that the minimal fallback document was substituted, Reason tells why.
type Result struct {
	Document Document
	Fallback bool
	Reason   error
}

// Fallback document constants
const (
	DocumentVersion       = "1.0"
	DefaultBackgroundType = "gradient"
	DefaultGradientColor1 = "#667eea"
	DefaultGradientColor2 = "#764ba2"
	DefaultCanvasWidth    = 1500
	DefaultCanvasHeight   = 1500
)

// maxDepth bounds the nesting of the input, deeper inputs fall back
const maxDepth = 64

var (
	errCycle     = errors.New("circular structure")
	errTooDeep   = errors.New("structure nested too deeply")
	errNotObject = errors.New("settings root is not an object")
)

// now is replaced in tests
var now = time.Now

var (
	jsonNumberType = reflect.TypeOf(json.Number(""))
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
)

// settingsScalarFields are the top-level fields recovered into a fallback document
var settingsScalarFields = []string{
	"backgroundType",
	"gradientColor1",
	"gradientColor2",
	"gradientAngle",
	"backgroundColor",
	"canvasWidth",
	"canvasHeight",
	"overlayType",
	"overlayColor",
	"overlayOpacity",
	"hasContent",
}

// Sanitize turns raw design state into a settings document.
//
// "raw" is usually the result of decoding a request body into any, but any Go value is accepted.
// Functions, channels, struct values and pointers to structs, maps with non-string keys,
// maps carrying a "nodeType" marker and non-finite numbers are replaced with null.
// Every number becomes float64. Elements are rebuilt from a per-type allow-list.
func Sanitize(raw any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fallback(raw, fmt.Errorf("sanitize panicked: %v", r))
		}
	}()

	doc, err := sanitize(raw)
	if err != nil {
		return fallback(raw, err)
	}
	return Result{Document: doc}
}

func sanitize(raw any) (Document, error) {
	c := &copier{path: make(map[pathKey]struct{})}
	copied, err := c.copy(reflect.ValueOf(raw), 0)
	if err != nil {
		return nil, err
	}

	root, ok := copied.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	if entries, ok := root["elements"].([]any); ok {
		root["elements"] = rebuildElements(entries)
	}

	return Document(root), nil
}

// pathKey identifies a container on the current descent path
type pathKey struct {
	ptr  uintptr
	kind reflect.Kind
}

// copier performs the JSON-safe deep copy
type copier struct {
	path map[pathKey]struct{}
}

func (c *copier) enter(v reflect.Value) error {
	key := pathKey{ptr: v.Pointer(), kind: v.Kind()}
	if _, ok := c.path[key]; ok {
		return errCycle
	}
	c.path[key] = struct{}{}
	return nil
}

func (c *copier) leave(v reflect.Value) {
	delete(c.path, pathKey{ptr: v.Pointer(), kind: v.Kind()})
}

func (c *copier) copy(v reflect.Value, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return c.copy(v.Elem(), depth)

	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() == reflect.Struct {
			return nil, nil
		}
		if err := c.enter(v); err != nil {
			return nil, err
		}
		defer c.leave(v)
		return c.copy(v.Elem(), depth+1)

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.String:
		if v.Type() == jsonNumberType {
			return parseNumber(v.String()), nil
		}
		return v.String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return finite(v.Float()), nil

	case reflect.Map:
		return c.copyMap(v, depth)

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type() == rawMessageType {
			return c.copyRawJSON(v.Bytes(), depth)
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// binary blobs are not canvas state
			return nil, nil
		}
		if v.Len() > 0 {
			if err := c.enter(v); err != nil {
				return nil, err
			}
			defer c.leave(v)
		}
		return c.copyList(v, depth)

	case reflect.Array:
		return c.copyList(v, depth)

	default:
		// func, chan, struct, complex, uintptr, unsafe pointer
		return nil, nil
	}
}

func (c *copier) copyMap(v reflect.Value, depth int) (any, error) {
	if v.IsNil() || v.Type().Key().Kind() != reflect.String {
		return nil, nil
	}
	if v.MapIndex(reflect.ValueOf("nodeType").Convert(v.Type().Key())).IsValid() {
		return nil, nil
	}

	if err := c.enter(v); err != nil {
		return nil, err
	}
	defer c.leave(v)

	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		value, err := c.copy(iter.Value(), depth+1)
		if err != nil {
			return nil, err
		}
		out[iter.Key().String()] = value
	}
	return out, nil
}

func (c *copier) copyList(v reflect.Value, depth int) (any, error) {
	out := make([]any, v.Len())
	for i := range v.Len() {
		value, err := c.copy(v.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}

func (c *copier) copyRawJSON(data []byte, depth int) (any, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, nil
	}
	return c.copy(reflect.ValueOf(decoded), depth)
}

func parseNumber(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// fallback builds the minimal document from whatever top-level scalars raw carries
func fallback(raw any, reason error) (res Result) {
	doc := Document{
		"backgroundType": DefaultBackgroundType,
		"gradientColor1": DefaultGradientColor1,
		"gradientColor2": DefaultGradientColor2,
		"canvasWidth":    float64(DefaultCanvasWidth),
		"canvasHeight":   float64(DefaultCanvasHeight),
		"elements":       []any{},
		"version":        DocumentVersion,
		"generatedAt":    now().UTC().Format(time.RFC3339Nano),
	}
	res = Result{Document: doc, Fallback: true, Reason: reason}

	defer func() {
		// raw is unreadable, keep the defaults only
		_ = recover()
	}()

	root := reflect.ValueOf(raw)
	for i := 0; i < maxDepth && root.IsValid() && (root.Kind() == reflect.Interface || root.Kind() == reflect.Pointer); i++ {
		if root.IsNil() {
			return res
		}
		root = root.Elem()
	}
	if !root.IsValid() || root.Kind() != reflect.Map || root.IsNil() || root.Type().Key().Kind() != reflect.String {
		return res
	}

	for _, key := range settingsScalarFields {
		value := root.MapIndex(reflect.ValueOf(key).Convert(root.Type().Key()))
		if scalar, ok := scalarOf(value); ok {
			doc[key] = scalar
		}
	}
	return res
}

// scalarOf returns the JSON primitive held by v, if it is one
func scalarOf(v reflect.Value) (any, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, false
	}

	var value any
	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		c := &copier{path: make(map[pathKey]struct{})}
		value, _ = c.copy(v, 0)
	default:
		return nil, false
	}
	return value, value != nil
}
