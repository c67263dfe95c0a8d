package jira

import "fmt"

// FetchError describes a failed exchange with the Jira server. StatusCode
// is zero unless the server answered with a non-OK status.
type FetchError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("jira: %s failed: HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("jira: %s failed: %v", e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
