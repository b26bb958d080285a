package workflow

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError describes a single validation problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for errors and returns all problems found.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	// Start state must exist
	if cfg.Start == "" {
		errs = append(errs, ValidationError{
			Field:   "start",
			Message: "start state is required",
		})
	} else if cfg.States != nil {
		if _, ok := cfg.States[cfg.Start]; !ok {
			errs = append(errs, ValidationError{
				Field:   "start",
				Message: fmt.Sprintf("start state %q does not exist", cfg.Start),
			})
		}
	}

	// States must exist
	if len(cfg.States) == 0 {
		errs = append(errs, ValidationError{
			Field:   "states",
			Message: "at least one state is required",
		})
	}

	// Validate each state
	hasTerminal := false
	for name, state := range cfg.States {
		errs = append(errs, validateState(name, state, cfg.States)...)
		if state.Type == StateTypeSucceed || state.Type == StateTypeFail {
			hasTerminal = true
		}
	}

	if len(cfg.States) > 0 && !hasTerminal {
		errs = append(errs, ValidationError{
			Field:   "states",
			Message: "at least one terminal state (succeed or fail) is required",
		})
	}

	return errs
}

// validateState validates a single state definition.
func validateState(name string, state *State, allStates map[string]*State) []ValidationError {
	var errs []ValidationError
	prefix := fmt.Sprintf("states.%s", name)

	// Type validation
	if !ValidStateTypes[state.Type] {
		errs = append(errs, ValidationError{
			Field:   prefix + ".type",
			Message: fmt.Sprintf("unknown state type %q (must be task, prompt, succeed, or fail)", state.Type),
		})
		return errs // Can't validate further without valid type
	}

	switch state.Type {
	case StateTypeTask:
		// Task states require action
		if state.Action == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".action",
				Message: "action is required for task states",
			})
		} else if !ValidActions[state.Action] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".action",
				Message: fmt.Sprintf("unknown action %q", state.Action),
			})
		}

		// Non-terminal states must have next
		if state.Next == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".next",
				Message: "next is required for task states",
			})
		}

		// Validate params for git.commit action
		if state.Action == "git.commit" {
			errs = append(errs, validateCommitParams(prefix, state.Params)...)
		}

	case StateTypePrompt:
		// Prompt states require a question and both branches
		if state.Question == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".question",
				Message: "question is required for prompt states",
			})
		}
		if state.Yes == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".yes",
				Message: "yes is required for prompt states",
			})
		}
		if state.No == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".no",
				Message: "no is required for prompt states",
			})
		}

	case StateTypeSucceed, StateTypeFail:
		// Terminal states must not have next
		if state.Next != "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".next",
				Message: "terminal states must not have next",
			})
		}
	}

	// Validate edge references exist
	edges := map[string]string{
		".next":  state.Next,
		".error": state.Error,
		".yes":   state.Yes,
		".no":    state.No,
	}
	for field, target := range edges {
		if target == "" {
			continue
		}
		if _, ok := allStates[target]; !ok {
			errs = append(errs, ValidationError{
				Field:   prefix + field,
				Message: fmt.Sprintf("references non-existent state %q", target),
			})
		}
	}

	return errs
}

// validateCommitParams validates params for git.commit actions.
func validateCommitParams(prefix string, params map[string]any) []ValidationError {
	var errs []ValidationError
	if params == nil {
		return errs
	}

	// Validate template path if present
	if tmpl, ok := params["template"]; ok {
		if s, ok := tmpl.(string); ok {
			errs = append(errs, validateTemplatePath(prefix+".params.template", s)...)
		}
	}

	if msg, ok := params["message"]; ok {
		if s, ok := msg.(string); ok && s == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".params.message",
				Message: "message must not be empty when set",
			})
		}
	}

	return errs
}

// validateTemplatePath checks that a file: path doesn't escape the repo root.
func validateTemplatePath(field, value string) []ValidationError {
	if value == "" || !strings.HasPrefix(value, "file:") {
		return nil
	}

	path := strings.TrimPrefix(value, "file:")
	cleaned := filepath.Clean(path)

	if filepath.IsAbs(cleaned) {
		return []ValidationError{{
			Field:   field,
			Message: "file path must be relative (not absolute)",
		}}
	}

	if strings.HasPrefix(cleaned, "..") {
		return []ValidationError{{
			Field:   field,
			Message: "file path must not escape the repository root",
		}}
	}

	return nil
}
