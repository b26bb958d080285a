package workflow

import "testing"

func TestParamHelper_String(t *testing.T) {
	p := NewParamHelper(map[string]any{
		"message": "fix: things",
		"force":   true,
	})

	if got := p.String("message", ""); got != "fix: things" {
		t.Errorf("got %q", got)
	}
	if got := p.String("template", "fallback"); got != "fallback" {
		t.Errorf("missing key should fall back, got %q", got)
	}
	if got := p.String("force", "fallback"); got != "fallback" {
		t.Errorf("mistyped key should fall back, got %q", got)
	}
}

func TestParamHelper_Bool(t *testing.T) {
	p := NewParamHelper(map[string]any{
		"force":        true,
		"set_upstream": false,
		"rebase":       "yes",
	})

	if !p.Bool("force", false) {
		t.Error("force should be true")
	}
	if p.Bool("set_upstream", true) {
		t.Error("set_upstream should be false")
	}
	if !p.Bool("missing", true) {
		t.Error("missing key should fall back to default")
	}
	if p.Bool("rebase", false) {
		t.Error("mistyped key should fall back to default")
	}
}

func TestParamHelper_Int(t *testing.T) {
	p := NewParamHelper(map[string]any{
		"bits":   4096,
		"big":    int64(2048),
		"floaty": 3.0,
		"text":   "many",
	})

	if got := p.Int("bits", 0); got != 4096 {
		t.Errorf("got %d", got)
	}
	if got := p.Int("big", 0); got != 2048 {
		t.Errorf("int64 value: got %d", got)
	}
	if got := p.Int("floaty", 0); got != 3 {
		t.Errorf("float64 value: got %d", got)
	}
	if got := p.Int("text", 7); got != 7 {
		t.Errorf("mistyped key should fall back, got %d", got)
	}
}

func TestParamHelper_Has(t *testing.T) {
	p := NewParamHelper(map[string]any{"force": false})

	if !p.Has("force") {
		t.Error("Has should see present keys even when falsy")
	}
	if p.Has("missing") {
		t.Error("Has should not see absent keys")
	}
}

func TestParamHelper_NilParams(t *testing.T) {
	p := NewParamHelper(nil)

	if got := p.String("message", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	if !p.Bool("set_upstream", true) {
		t.Error("nil params should fall back to default")
	}
	if p.Has("anything") {
		t.Error("nil params have no keys")
	}
}
