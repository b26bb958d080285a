package workflow

import (
	"fmt"
	"os"
	"path/filepath"
)

// Template is the default workflow.yaml content.
const Template = `# bgit workflow configuration
#
# This file defines the state machine bgit walks through when you run it
# in this repository. States are nodes connected by next (success) and
# error (failure) edges; prompt states branch on a yes/no answer.

workflow: commit-and-push
start: status

states:
  status:
    type: task
    action: git.status
    next: confirm_stage
    error: failed

  confirm_stage:
    type: prompt
    question: "Stage all changes?"
    default: true
    yes: stage
    no: commit

  stage:
    type: task
    action: git.stage
    next: commit
    error: failed

  commit:
    type: task
    action: git.commit
    # params:
    #   message: ""              # Fixed commit message (skips the prompt)
    #   template: ""             # Prefill (inline or file:path/to/template.txt)
    # after:                     # Hooks to run after the commit
    #   - run: "make lint"
    next: confirm_push
    error: failed

  confirm_push:
    type: prompt
    question: "Push to origin?"
    default: true
    yes: auth
    no: done

  auth:
    type: task
    action: auth.setup
    next: push
    error: failed

  push:
    type: task
    action: git.push
    params:
      set_upstream: true
      # force: false             # Use --force-with-lease
    next: done
    error: failed

  done:
    type: succeed

  failed:
    type: fail
`

// WriteTemplate writes the default workflow.yaml template to repoPath/.bgit/workflow.yaml.
// Returns an error if the file already exists.
func WriteTemplate(repoPath string) (string, error) {
	dir := filepath.Join(repoPath, workflowDir)
	fp := filepath.Join(dir, workflowFileName)

	if _, err := os.Stat(fp); err == nil {
		return fp, fmt.Errorf("%s already exists", fp)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fp, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fp, []byte(Template), 0o644); err != nil {
		return fp, fmt.Errorf("failed to write %s: %w", fp, err)
	}

	return fp, nil
}
