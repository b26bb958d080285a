package workflow

import "testing"

func TestDefaultWorkflowConfig_Valid(t *testing.T) {
	cfg := DefaultWorkflowConfig()

	if errs := Validate(cfg); len(errs) > 0 {
		t.Fatalf("default config must validate cleanly, got: %v", errs)
	}
	if cfg.Start != "status" {
		t.Errorf("start = %q", cfg.Start)
	}
	if _, ok := cfg.States["done"]; !ok {
		t.Error("missing done state")
	}
	if _, ok := cfg.States["failed"]; !ok {
		t.Error("missing failed state")
	}
}

func TestDefaultWorkflowConfig_AuthBeforePush(t *testing.T) {
	cfg := DefaultWorkflowConfig()

	auth := cfg.States["auth"]
	if auth == nil || auth.Action != "auth.setup" {
		t.Fatal("expected an auth.setup state")
	}
	if auth.Next != "push" {
		t.Errorf("auth must lead to push, got %q", auth.Next)
	}
	if cfg.States["push"].Action != "git.push" {
		t.Error("push state must run git.push")
	}
}

func TestMerge_EmptyPartialKeepsDefaults(t *testing.T) {
	defaults := DefaultWorkflowConfig()
	merged := Merge(&Config{}, defaults)

	if merged.Workflow != defaults.Workflow {
		t.Errorf("workflow = %q", merged.Workflow)
	}
	if merged.Start != defaults.Start {
		t.Errorf("start = %q", merged.Start)
	}
	if len(merged.States) != len(defaults.States) {
		t.Errorf("expected %d states, got %d", len(defaults.States), len(merged.States))
	}
}

func TestMerge_PartialStateReplacesDefault(t *testing.T) {
	partial := &Config{
		States: map[string]*State{
			"push": {Type: StateTypeTask, Action: "git.push", Params: map[string]any{"force": true}, Next: "done"},
		},
	}
	merged := Merge(partial, DefaultWorkflowConfig())

	push := merged.States["push"]
	if !NewParamHelper(push.Params).Bool("force", false) {
		t.Error("partial push state should replace the default")
	}
	// Other default states survive
	if _, ok := merged.States["commit"]; !ok {
		t.Error("default commit state should be preserved")
	}
}

func TestMerge_DoesNotAliasDefaultStates(t *testing.T) {
	defaults := DefaultWorkflowConfig()
	merged := Merge(&Config{}, defaults)

	merged.States["push"].Params["set_upstream"] = false
	if v := defaults.States["push"].Params["set_upstream"]; v != true {
		t.Error("merge must deep-copy default state params")
	}
}

func TestMerge_TopLevelOverride(t *testing.T) {
	partial := &Config{Workflow: "custom", Start: "commit"}
	merged := Merge(partial, DefaultWorkflowConfig())

	if merged.Workflow != "custom" {
		t.Errorf("workflow = %q", merged.Workflow)
	}
	if merged.Start != "commit" {
		t.Errorf("start = %q", merged.Start)
	}
}
