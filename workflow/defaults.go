package workflow

// DefaultWorkflowConfig returns a Config with the default state graph
// (status → stage? → commit → auth → push? → done, with a failed terminal
// state). It mirrors the guided flow bgit runs when a repository has no
// .bgit/workflow.yaml of its own.
func DefaultWorkflowConfig() *Config {
	return &Config{
		Workflow: "commit-and-push",
		Start:    "status",
		States: map[string]*State{
			"status": {
				Type:   StateTypeTask,
				Action: "git.status",
				Next:   "confirm_stage",
				Error:  "failed",
			},
			"confirm_stage": {
				Type:     StateTypePrompt,
				Question: "Stage all changes?",
				Default:  true,
				Yes:      "stage",
				No:       "commit",
			},
			"stage": {
				Type:   StateTypeTask,
				Action: "git.stage",
				Next:   "commit",
				Error:  "failed",
			},
			"commit": {
				Type:   StateTypeTask,
				Action: "git.commit",
				Next:   "confirm_push",
				Error:  "failed",
			},
			"confirm_push": {
				Type:     StateTypePrompt,
				Question: "Push to origin?",
				Default:  true,
				Yes:      "auth",
				No:       "done",
			},
			"auth": {
				Type:   StateTypeTask,
				Action: "auth.setup",
				Next:   "push",
				Error:  "failed",
			},
			"push": {
				Type:   StateTypeTask,
				Action: "git.push",
				Params: map[string]any{
					"set_upstream": true,
				},
				Next:  "done",
				Error: "failed",
			},
			"done": {
				Type: StateTypeSucceed,
			},
			"failed": {
				Type: StateTypeFail,
			},
		},
	}
}

// DefaultConfig returns the default config. Alias for DefaultWorkflowConfig.
func DefaultConfig() *Config {
	return DefaultWorkflowConfig()
}

// Merge overlays partial onto defaults. States present in partial replace the
// corresponding default state entirely. States in defaults but not in partial
// are preserved. Top-level fields (Workflow, Start) use partial if non-empty.
func Merge(partial, defaults *Config) *Config {
	result := &Config{
		Workflow: partial.Workflow,
		Start:    partial.Start,
		States:   make(map[string]*State),
	}

	// Fill empty top-level fields from defaults
	if result.Workflow == "" {
		result.Workflow = defaults.Workflow
	}
	if result.Start == "" {
		result.Start = defaults.Start
	}

	// Copy defaults first
	for name, state := range defaults.States {
		s := *state
		if state.Params != nil {
			s.Params = make(map[string]any, len(state.Params))
			for k, v := range state.Params {
				s.Params[k] = v
			}
		}
		if state.After != nil {
			s.After = make([]HookConfig, len(state.After))
			copy(s.After, state.After)
		}
		result.States[name] = &s
	}

	// Overlay partial states (full replacement per state)
	for name, state := range partial.States {
		result.States[name] = state
	}

	return result
}
