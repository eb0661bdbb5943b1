package restrictions

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Resolved is the typed view of a document merged with the defaults
type Resolved struct {
	BackgroundControls BackgroundControls `json:"backgroundControls" mapstructure:"backgroundControls"`
	Fonts              FontControls       `json:"fonts"              mapstructure:"fonts"`
	ImageControls      ImageControls      `json:"imageControls"      mapstructure:"imageControls"`
	ShapeControls      ShapeControls      `json:"shapeControls"      mapstructure:"shapeControls"`
	CanvasControls     CanvasControls     `json:"canvasControls"     mapstructure:"canvasControls"`
	GeneralControls    GeneralControls    `json:"generalControls"    mapstructure:"generalControls"`
}

// BackgroundControls restricts the background editor
type BackgroundControls struct {
	Locked          bool   `json:"locked"          mapstructure:"locked"`
	BackgroundType  string `json:"backgroundType"  mapstructure:"backgroundType"`
	SolidEnabled    bool   `json:"solidEnabled"    mapstructure:"solidEnabled"`
	GradientEnabled bool   `json:"gradientEnabled" mapstructure:"gradientEnabled"`
	ImageEnabled    bool   `json:"imageEnabled"    mapstructure:"imageEnabled"`
}

// FontControls restricts text styling
type FontControls struct {
	Enabled        bool     `json:"enabled"        mapstructure:"enabled"`
	AllowedFonts   []string `json:"allowedFonts"   mapstructure:"allowedFonts"`
	LockFontStyles bool     `json:"lockFontStyles" mapstructure:"lockFontStyles"`
}

// ImageControls restricts image elements
type ImageControls struct {
	UploadEnabled bool `json:"uploadEnabled" mapstructure:"uploadEnabled"`
	CropEnabled   bool `json:"cropEnabled"   mapstructure:"cropEnabled"`
	BorderEnabled bool `json:"borderEnabled" mapstructure:"borderEnabled"`
	BlurEnabled   bool `json:"blurEnabled"   mapstructure:"blurEnabled"`
}

// ShapeControls restricts shape elements
type ShapeControls struct {
	RectangleEnabled bool `json:"rectangleEnabled" mapstructure:"rectangleEnabled"`
	CircleEnabled    bool `json:"circleEnabled"    mapstructure:"circleEnabled"`
	LineEnabled      bool `json:"lineEnabled"      mapstructure:"lineEnabled"`
	StarEnabled      bool `json:"starEnabled"      mapstructure:"starEnabled"`
}

// CanvasControls restricts the canvas size
type CanvasControls struct {
	LockCanvasSize bool `json:"lockCanvasSize" mapstructure:"lockCanvasSize"`
	DefaultWidth   int  `json:"defaultWidth"   mapstructure:"defaultWidth"`
	DefaultHeight  int  `json:"defaultHeight"  mapstructure:"defaultHeight"`
}

// GeneralControls restricts editor wide tools
type GeneralControls struct {
	LayersEnabled    bool `json:"layersEnabled"    mapstructure:"layersEnabled"`
	TemplatesEnabled bool `json:"templatesEnabled" mapstructure:"templatesEnabled"`
	UndoEnabled      bool `json:"undoEnabled"      mapstructure:"undoEnabled"`
	ResetEnabled     bool `json:"resetEnabled"     mapstructure:"resetEnabled"`
}

// Resolve merges doc with the defaults and decodes it into the typed view
func Resolve(doc Document) (*Resolved, error) {
	merged := MergeWithDefaults(doc)

	resolved := &Resolved{}
	if err := mapstructure.Decode(merged, resolved); err != nil {
		return nil, fmt.Errorf("failed to decode restrictions: %w", err)
	}
	return resolved, nil
}
