package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rootCircle/bgit/prompt"
)

// FlowState is the mutable position of one workflow run.
type FlowState struct {
	RepoPath    string
	Branch      string
	CurrentStep string

	// Data accumulates action output across steps.
	Data map[string]any
}

// StepResult is the outcome of processing a step.
type StepResult struct {
	NewStep    string         // The step to move to (empty if no change)
	Terminal   bool           // True if the workflow has reached a terminal state
	TerminalOK bool           // True if terminal state is succeed (false = fail)
	Data       map[string]any // Data to merge into flow data
	Hooks      []HookConfig   // After-hooks to run
}

// Engine is the core workflow orchestrator.
type Engine struct {
	config  *Config
	actions *ActionRegistry
	ui      prompt.Interactor
	logger  *slog.Logger
}

// NewEngine creates a new workflow engine.
func NewEngine(cfg *Config, actions *ActionRegistry, ui prompt.Interactor, logger *slog.Logger) *Engine {
	return &Engine{
		config:  cfg,
		actions: actions,
		ui:      ui,
		logger:  logger,
	}
}

// GetStartState returns the start state name from the config.
func (e *Engine) GetStartState() string {
	return e.config.Start
}

// GetConfig returns the engine's workflow config.
func (e *Engine) GetConfig() *Config {
	return e.config
}

// Run drives the flow from the start state to a terminal state. The step
// budget bounds runaway graphs that validation could not catch (a prompt
// loop the user keeps saying yes to, for instance).
func (e *Engine) Run(ctx context.Context, repoPath, branch string) error {
	flow := &FlowState{
		RepoPath:    repoPath,
		Branch:      branch,
		CurrentStep: e.config.Start,
		Data:        make(map[string]any),
	}

	maxSteps := 4 * len(e.config.States)
	for i := 0; i < maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := e.ProcessStep(ctx, flow)
		if err != nil {
			return err
		}

		for k, v := range result.Data {
			flow.Data[k] = v
		}
		RunHooks(ctx, result.Hooks, HookContext{
			RepoPath: flow.RepoPath,
			Branch:   flow.Branch,
			Step:     flow.CurrentStep,
			Workflow: e.config.Workflow,
		}, e.logger)

		if result.Terminal {
			if !result.TerminalOK {
				return fmt.Errorf("workflow %q ended in failure state %q", e.config.Workflow, flow.CurrentStep)
			}
			return nil
		}
		flow.CurrentStep = result.NewStep
	}
	return fmt.Errorf("workflow %q exceeded %d steps without terminating", e.config.Workflow, maxSteps)
}

// ProcessStep processes the current step for a flow.
// It dispatches based on state type: succeed/fail → terminal,
// task → execute action, prompt → ask the user and branch.
func (e *Engine) ProcessStep(ctx context.Context, flow *FlowState) (*StepResult, error) {
	state, ok := e.config.States[flow.CurrentStep]
	if !ok {
		return nil, fmt.Errorf("unknown state %q", flow.CurrentStep)
	}

	switch state.Type {
	case StateTypeSucceed:
		return &StepResult{
			Terminal:   true,
			TerminalOK: true,
			Hooks:      state.After,
		}, nil

	case StateTypeFail:
		return &StepResult{
			Terminal:   true,
			TerminalOK: false,
			Hooks:      state.After,
		}, nil

	case StateTypeTask:
		return e.processTaskState(ctx, flow, state)

	case StateTypePrompt:
		return e.processPromptState(flow, state)

	default:
		return nil, fmt.Errorf("unsupported state type %q", state.Type)
	}
}

// processTaskState handles task state execution.
func (e *Engine) processTaskState(ctx context.Context, flow *FlowState, state *State) (*StepResult, error) {
	action := e.actions.Get(state.Action)
	if action == nil {
		return nil, fmt.Errorf("no action registered for %q", state.Action)
	}

	ac := &ActionContext{
		RepoPath: flow.RepoPath,
		Branch:   flow.Branch,
		Params:   NewParamHelper(state.Params),
		Logger:   e.logger,
		Extra:    flow.Data,
	}

	result := action.Execute(ctx, ac)

	if !result.Success {
		// Follow error edge if available
		if state.Error != "" {
			e.logger.Debug("action failed, following error edge",
				"action", state.Action, "error", result.Error, "next", state.Error)
			return &StepResult{
				NewStep: state.Error,
				Data:    result.Data,
				Hooks:   state.After,
			}, nil
		}
		return nil, fmt.Errorf("action %q failed: %v", state.Action, result.Error)
	}

	// Success, follow next edge
	return &StepResult{
		NewStep: state.Next,
		Data:    result.Data,
		Hooks:   state.After,
	}, nil
}

// processPromptState asks the user the state's question and branches.
func (e *Engine) processPromptState(flow *FlowState, state *State) (*StepResult, error) {
	next := state.No
	if e.ui.Confirm(state.Question, state.Default) {
		next = state.Yes
	}
	return &StepResult{
		NewStep: next,
		Hooks:   state.After,
	}, nil
}

// GetState returns the state definition for a given state name.
func (e *Engine) GetState(name string) *State {
	if e.config.States == nil {
		return nil
	}
	return e.config.States[name]
}

// IsTerminalState returns true if the named state is a terminal state.
func (e *Engine) IsTerminalState(name string) bool {
	state, ok := e.config.States[name]
	if !ok {
		return false
	}
	return state.Type == StateTypeSucceed || state.Type == StateTypeFail
}
