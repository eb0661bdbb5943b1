// Package restrictions defines which canvas features a preset may restrict and their defaults.
//
// A stored restrictions Document is a sparse diff against the defaults: any field absent from
// it reads as its default. Documents are never mutated in place, every write returns a copy.
package restrictions

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Kind describes the value type of a restriction field
type Kind string

const (
	KindBool     Kind = "boolean"
	KindEnum     Kind = "enum"
	KindNumber   Kind = "number"
	KindFontList Kind = "fontList"
)

// Category names
const (
	CategoryBackground = "backgroundControls"
	CategoryFonts      = "fonts"
	CategoryImage      = "imageControls"
	CategoryShape      = "shapeControls"
	CategoryCanvas     = "canvasControls"
	CategoryGeneral    = "generalControls"
)

// Canvas size bounds enforced on defaultWidth and defaultHeight
const (
	MinCanvasSize     = 100
	MaxCanvasSize     = 5000
	DefaultCanvasSize = 1500
)

// ErrInvalidField is returned for unknown categories, unknown fields and wrongly typed values
var ErrInvalidField = errors.New("invalid restriction field")

// Field describes one restriction leaf
type Field struct {
	Key     string   `json:"key"`
	Kind    Kind     `json:"kind"`
	Default any      `json:"default"`
	Options []string `json:"options,omitempty"`
	Min     float64  `json:"min,omitempty"`
	Max     float64  `json:"max,omitempty"`
}

// Category groups the fields of one editor feature
type Category struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// fontList is the fixed set of fonts the editor ships with
var fontList = []string{
	"Arial",
	"Helvetica",
	"Times New Roman",
	"Georgia",
	"Verdana",
	"Courier New",
	"Trebuchet MS",
	"Impact",
	"Comic Sans MS",
	"Palatino",
	"Garamond",
	"Roboto",
	"Open Sans",
	"Lato",
	"Montserrat",
	"Poppins",
	"Playfair Display",
	"Oswald",
}

var backgroundTypes = []string{"solid", "gradient", "image"}

func boolField(key string, def bool) Field {
	return Field{Key: key, Kind: KindBool, Default: def}
}

func sizeField(key string) Field {
	return Field{Key: key, Kind: KindNumber, Default: float64(DefaultCanvasSize), Min: MinCanvasSize, Max: MaxCanvasSize}
}

var schema = []Category{
	{
		Name: CategoryBackground,
		Fields: []Field{
			boolField("locked", false),
			{Key: "backgroundType", Kind: KindEnum, Default: "gradient", Options: backgroundTypes},
			boolField("solidEnabled", true),
			boolField("gradientEnabled", true),
			boolField("imageEnabled", true),
		},
	},
	{
		Name: CategoryFonts,
		Fields: []Field{
			boolField("enabled", true),
			{Key: "allowedFonts", Kind: KindFontList, Default: fontList},
			boolField("lockFontStyles", false),
		},
	},
	{
		Name: CategoryImage,
		Fields: []Field{
			boolField("uploadEnabled", true),
			boolField("cropEnabled", true),
			boolField("borderEnabled", true),
			boolField("blurEnabled", true),
		},
	},
	{
		Name: CategoryShape,
		Fields: []Field{
			boolField("rectangleEnabled", true),
			boolField("circleEnabled", true),
			boolField("lineEnabled", true),
			boolField("starEnabled", true),
		},
	},
	{
		Name: CategoryCanvas,
		Fields: []Field{
			boolField("lockCanvasSize", false),
			sizeField("defaultWidth"),
			sizeField("defaultHeight"),
		},
	},
	{
		Name: CategoryGeneral,
		Fields: []Field{
			boolField("layersEnabled", true),
			boolField("templatesEnabled", true),
			boolField("undoEnabled", true),
			boolField("resetEnabled", true),
		},
	},
}

// fieldIndex maps category -> key -> field
var fieldIndex = func() map[string]map[string]Field {
	index := make(map[string]map[string]Field, len(schema))
	for _, category := range schema {
		fields := make(map[string]Field, len(category.Fields))
		for _, field := range category.Fields {
			fields[field.Key] = field
		}
		index[category.Name] = fields
	}
	return index
}()

// Schema returns a copy of every category with its fields and defaults
func Schema() []Category {
	out := make([]Category, len(schema))
	for i, category := range schema {
		fields := make([]Field, len(category.Fields))
		for j, field := range category.Fields {
			field.Default = cloneValue(field.Default)
			field.Options = slices.Clone(field.Options)
			fields[j] = field
		}
		out[i] = Category{Name: category.Name, Fields: fields}
	}
	return out
}

// FontList returns the fixed font list
func FontList() []string {
	return slices.Clone(fontList)
}

// lookupField returns the schema entry for category.key
func lookupField(category, key string) (Field, error) {
	fields, ok := fieldIndex[category]
	if !ok {
		return Field{}, fmt.Errorf("%w: unknown category %q", ErrInvalidField, category)
	}
	field, ok := fields[key]
	if !ok {
		return Field{}, fmt.Errorf("%w: unknown field %s.%s", ErrInvalidField, category, key)
	}
	return field, nil
}

// normalizeValue validates value against the field kind and converts it to its canonical type:
// bool, string, float64 or []string
func normalizeValue(category string, field Field, value any) (any, error) {
	switch field.Kind {
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s must be a boolean", ErrInvalidField, category, field.Key)
		}
		return b, nil

	case KindEnum:
		s, ok := value.(string)
		if !ok || !slices.Contains(field.Options, s) {
			return nil, fmt.Errorf("%w: %s.%s must be one of %v", ErrInvalidField, category, field.Key, field.Options)
		}
		return s, nil

	case KindNumber:
		f, ok := toFloat(value)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %s.%s must be a number", ErrInvalidField, category, field.Key)
		}
		return math.Round(min(max(f, field.Min), field.Max)), nil

	case KindFontList:
		return normalizeFonts(category, field.Key, value)
	}
	return nil, fmt.Errorf("%w: %s.%s has no kind", ErrInvalidField, category, field.Key)
}

func normalizeFonts(category, key string, value any) (any, error) {
	var names []string
	switch v := value.(type) {
	case []string:
		names = v
	case []any:
		names = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s must only contain font names", ErrInvalidField, category, key)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("%w: %s.%s must be a list of font names", ErrInvalidField, category, key)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(fontList, name) {
			return nil, fmt.Errorf("%w: %s.%s contains unknown font %q", ErrInvalidField, category, key, name)
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s.%s must not be empty, disable fonts instead", ErrInvalidField, category, key)
	}
	return out, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case interface{ Float64() (float64, error) }:
		// json.Number
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func cloneValue(value any) any {
	if list, ok := value.([]string); ok {
		return slices.Clone(list)
	}
	return value
}
