// Package git provides bgit's thin wrappers over individual git
// operations. Each wrapper shells out to the git binary through the exec
// abstraction; authentication for network operations is prepared by the
// auth subsystem before git runs, so git finds a live, populated agent in
// the environment.
//
// The package is organized into focused modules:
//   - service.go: GitService struct and constructor
//   - status.go: Working tree status and current branch
//   - commit.go: Staging and commit operations
//   - remote.go: Push/pull with authentication preflight
package git
