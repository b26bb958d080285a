package prompt

import "fmt"

// Script is a scripted Interactor for tests. Each call pops the next
// queued answer; running out of answers fails loudly so tests don't
// silently accept defaults.
type Script struct {
	Confirms  []bool
	Inputs    []string
	Passwords []string

	// Asked records every question in order, for assertions.
	Asked []string
}

// Confirm pops the next scripted confirmation, or false when exhausted.
func (s *Script) Confirm(question string, def bool) bool {
	s.Asked = append(s.Asked, question)
	if len(s.Confirms) == 0 {
		return false
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer
}

// Input pops the next scripted input.
func (s *Script) Input(prompt, prefill string) (string, error) {
	s.Asked = append(s.Asked, prompt)
	if len(s.Inputs) == 0 {
		return "", fmt.Errorf("no scripted input for %q", prompt)
	}
	answer := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	if answer == "" {
		return prefill, nil
	}
	return answer, nil
}

// Password pops the next scripted secret.
func (s *Script) Password(prompt string) (string, error) {
	s.Asked = append(s.Asked, prompt)
	if len(s.Passwords) == 0 {
		return "", fmt.Errorf("no scripted password for %q", prompt)
	}
	answer := s.Passwords[0]
	s.Passwords = s.Passwords[1:]
	return answer, nil
}

var _ Interactor = (*Script)(nil)
