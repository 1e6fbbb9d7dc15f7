package main

// exitError carries a specific process exit code out of a command handler.
//
// Most commands return plain errors and exit with code 1 after Execute
// prints them. exitError covers the paths that have already printed their
// own diagnostics: a nil Err exits with Code and no further output.
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
