package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateMermaid renders a workflow config as a mermaid stateDiagram-v2,
// for `bgit visualize`. States are emitted in name order so the output is
// stable across runs.
func GenerateMermaid(cfg *Config) string {
	names := make([]string, 0, len(cfg.States))
	for name := range cfg.States {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    [*] --> %s\n", cfg.Start)

	for _, name := range names {
		state := cfg.States[name]
		writeStateEdges(&sb, name, state)
		if note := paramsNote(state); note != "" {
			fmt.Fprintf(&sb, "    note right of %s\n        %s\n    end note\n", name, note)
		}
	}
	return sb.String()
}

func writeStateEdges(sb *strings.Builder, name string, state *State) {
	switch state.Type {
	case StateTypeSucceed, StateTypeFail:
		fmt.Fprintf(sb, "    %s --> [*]\n", name)

	case StateTypeTask:
		if state.Next != "" {
			fmt.Fprintf(sb, "    %s --> %s : %s\n", name, state.Next, state.Action)
		}
		if state.Error != "" {
			fmt.Fprintf(sb, "    %s --> %s : error\n", name, state.Error)
		}
		if len(state.After) > 0 {
			fmt.Fprintf(sb, "    %s --> %s_hooks : after hooks\n", name, name)
		}

	case StateTypePrompt:
		if state.Yes != "" {
			fmt.Fprintf(sb, "    %s --> %s : yes\n", name, state.Yes)
		}
		if state.No != "" {
			fmt.Fprintf(sb, "    %s --> %s : no\n", name, state.No)
		}
	}
}

// paramsNote flattens a state's params into a one-line annotation, keys
// sorted for stable output.
func paramsNote(state *State) string {
	if len(state.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(state.Params))
	for k := range state.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, state.Params[k]))
	}
	return strings.Join(parts, ", ")
}
