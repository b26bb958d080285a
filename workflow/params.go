package workflow

// ParamHelper wraps a state's params map with typed accessors. YAML
// unmarshals params as map[string]any; actions read them through these
// getters so a missing or mistyped value falls back to the action's
// default instead of panicking mid-flow.
type ParamHelper struct {
	params map[string]any
}

// NewParamHelper wraps a params map. A nil map is treated as empty.
func NewParamHelper(params map[string]any) *ParamHelper {
	return &ParamHelper{params: params}
}

// String returns the string value for key, or def when absent or mistyped.
func (p *ParamHelper) String(key, def string) string {
	if s, ok := p.params[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key, or def when absent or mistyped.
func (p *ParamHelper) Bool(key string, def bool) bool {
	if b, ok := p.params[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the int value for key, or def when absent or mistyped.
// yaml.v3 decodes integers as int; int64 and float64 are accepted for
// params assembled in code.
func (p *ParamHelper) Int(key string, def int) int {
	switch n := p.params[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Has reports whether the key is present at all, regardless of type.
func (p *ParamHelper) Has(key string) bool {
	_, ok := p.params[key]
	return ok
}
