package exec

import (
	"context"
	"sync"
)

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Pid    int // returned by StartDetached
	Err    error
}

// CommandMatcher is a function that determines if a command matches.
type CommandMatcher func(dir, name string, args []string) bool

// MockRule defines a matching rule and its response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockCall records a command invocation for verification.
type MockCall struct {
	Dir         string
	Name        string
	Args        []string
	ExtraEnv    []string
	Interactive bool
	Detached    bool
}

// MockExecutor returns pre-recorded responses for commands.
// Commands are matched in order of rule registration.
type MockExecutor struct {
	mu       sync.RWMutex
	rules    []MockRule
	calls    []MockCall
	fallback CommandExecutor
}

// NewMockExecutor creates a new MockExecutor.
// If fallback is provided, unmatched commands will be delegated to it.
func NewMockExecutor(fallback CommandExecutor) *MockExecutor {
	return &MockExecutor{
		fallback: fallback,
	}
}

// AddRule adds a matching rule with its response.
func (e *MockExecutor) AddRule(match CommandMatcher, response MockResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, MockRule{Match: match, Response: response})
}

// AddExactMatch adds a rule that matches a specific command exactly.
func (e *MockExecutor) AddExactMatch(name string, args []string, response MockResponse) {
	e.AddRule(func(dir, n string, a []string) bool {
		if n != name {
			return false
		}
		if len(a) != len(args) {
			return false
		}
		for i, arg := range args {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// AddPrefixMatch adds a rule that matches commands starting with specific args.
func (e *MockExecutor) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	e.AddRule(func(dir, n string, a []string) bool {
		if n != name {
			return false
		}
		if len(a) < len(prefixArgs) {
			return false
		}
		for i, arg := range prefixArgs {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// GetCalls returns all recorded command invocations.
func (e *MockExecutor) GetCalls() []MockCall {
	e.mu.RLock()
	defer e.mu.RUnlock()
	calls := make([]MockCall, len(e.calls))
	copy(calls, e.calls)
	return calls
}

// ClearCalls clears the recorded command invocations.
func (e *MockExecutor) ClearCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

func (e *MockExecutor) findMatch(dir, name string, args []string) *MockResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, rule := range e.rules {
		if rule.Match(dir, name, args) {
			return &rule.Response
		}
	}
	return nil
}

func (e *MockExecutor) recordCall(call MockCall) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
}

// Run executes a mocked command.
func (e *MockExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	return e.RunEnv(ctx, dir, nil, name, args...)
}

// RunEnv executes a mocked command with extra environment entries.
func (e *MockExecutor) RunEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (stdout, stderr []byte, err error) {
	e.recordCall(MockCall{Dir: dir, Name: name, Args: args, ExtraEnv: extraEnv})

	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Stdout, resp.Stderr, resp.Err
	}

	if e.fallback != nil {
		return e.fallback.RunEnv(ctx, dir, extraEnv, name, args...)
	}

	// Default: return empty success
	return nil, nil, nil
}

// Output executes a mocked command.
func (e *MockExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	e.recordCall(MockCall{Dir: dir, Name: name, Args: args})

	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Stdout, resp.Err
	}

	if e.fallback != nil {
		return e.fallback.Output(ctx, dir, name, args...)
	}

	return nil, nil
}

// CombinedOutput executes a mocked command.
func (e *MockExecutor) CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	e.recordCall(MockCall{Dir: dir, Name: name, Args: args})

	if resp := e.findMatch(dir, name, args); resp != nil {
		combined := append(resp.Stdout, resp.Stderr...)
		return combined, resp.Err
	}

	if e.fallback != nil {
		return e.fallback.CombinedOutput(ctx, dir, name, args...)
	}

	return nil, nil
}

// RunInteractive executes a mocked interactive command.
func (e *MockExecutor) RunInteractive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error {
	e.recordCall(MockCall{Dir: dir, Name: name, Args: args, ExtraEnv: extraEnv, Interactive: true})

	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Err
	}

	if e.fallback != nil {
		return e.fallback.RunInteractive(ctx, dir, extraEnv, name, args...)
	}

	return nil
}

// StartDetached starts a mocked detached command.
func (e *MockExecutor) StartDetached(dir string, extraEnv []string, name string, args ...string) (int, error) {
	e.recordCall(MockCall{Dir: dir, Name: name, Args: args, ExtraEnv: extraEnv, Detached: true})

	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Pid, resp.Err
	}

	if e.fallback != nil {
		return e.fallback.StartDetached(dir, extraEnv, name, args...)
	}

	return 0, nil
}

var _ CommandExecutor = (*MockExecutor)(nil)
