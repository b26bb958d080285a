// Package workflow provides bgit's configurable guided git flows.
// Flows are defined in .bgit/workflow.yaml per repository; a built-in
// default covers the standard status/stage/commit/push sequence.
package workflow

import (
	"fmt"
	"time"
)

// StateType represents the kind of state in the workflow graph.
type StateType string

const (
	StateTypeTask    StateType = "task"
	StateTypePrompt  StateType = "prompt"
	StateTypeSucceed StateType = "succeed"
	StateTypeFail    StateType = "fail"
)

// Config is the top-level workflow configuration.
type Config struct {
	Workflow string            `yaml:"workflow"`
	Start    string            `yaml:"start"`
	States   map[string]*State `yaml:"states"`
}

// State represents a single node in the workflow graph.
type State struct {
	Type   StateType      `yaml:"type"`
	Action string         `yaml:"action,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
	Next   string         `yaml:"next,omitempty"`
	Error  string         `yaml:"error,omitempty"`

	// Prompt states ask the user a yes/no question and branch.
	Question string `yaml:"question,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
	Yes      string `yaml:"yes,omitempty"`
	No       string `yaml:"no,omitempty"`

	After []HookConfig `yaml:"after,omitempty"`
}

// HookConfig defines a hook to run after a workflow step.
type HookConfig struct {
	Run string `yaml:"run"`
}

// Duration is a wrapper around time.Duration that implements YAML unmarshaling
// from human-readable strings like "30m", "2h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// ValidActions is the set of recognized action names for task states.
var ValidActions = map[string]bool{
	"git.status": true,
	"git.stage":  true,
	"git.commit": true,
	"git.pull":   true,
	"git.push":   true,
	"auth.setup": true,
}

// ValidStateTypes is the set of recognized state types.
var ValidStateTypes = map[StateType]bool{
	StateTypeTask:    true,
	StateTypePrompt:  true,
	StateTypeSucceed: true,
	StateTypeFail:    true,
}
