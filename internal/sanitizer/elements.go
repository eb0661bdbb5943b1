package sanitizer

// Element types
const (
	ElementText  = "text"
	ElementImage = "image"
	ElementShape = "shape"
)

// commonElementFields are kept for every element, whatever its type
var commonElementFields = []string{"id", "type", "x", "y", "width", "height", "rotation", "opacity", "zIndex"}

// elementDefaults apply when a common field is absent or null
var elementDefaults = map[string]any{
	"rotation": float64(0),
	"opacity":  float64(1),
	"zIndex":   float64(0),
}

// typeFields is the per-type allow-list on top of the common fields
var typeFields = map[string][]string{
	ElementText:  {"text", "fontSize", "fontFamily", "color", "fontWeight", "textAlign"},
	ElementImage: {"src", "naturalWidth", "naturalHeight"},
	ElementShape: {"shapeType", "fill", "stroke", "strokeWidth"},
}

// AllowedElementFields returns every field an element of the given type may persist.
// Unknown types only get the common fields.
func AllowedElementFields(elementType string) []string {
	fields := make([]string, 0, len(commonElementFields)+len(typeFields[elementType]))
	fields = append(fields, commonElementFields...)
	return append(fields, typeFields[elementType]...)
}

// rebuildElements drops non-object entries and rebuilds the rest from the allow-list
func rebuildElements(entries []any) []any {
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		element, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, rebuildElement(element))
	}
	return out
}

func rebuildElement(element map[string]any) map[string]any {
	elementType, _ := element["type"].(string)
	fields := AllowedElementFields(elementType)

	out := make(map[string]any, len(fields))
	for _, key := range fields {
		if value, ok := element[key]; ok {
			out[key] = value
		}
	}
	for key, value := range elementDefaults {
		if out[key] == nil {
			out[key] = value
		}
	}
	return out
}
