package actions

import "fmt"

// FirstRunError reports that no config existed and a template was written.
type FirstRunError struct {
	Path string
}

func (e *FirstRunError) Error() string {
	return fmt.Sprintf("Config file created at %q, please edit the file to match your setup.", e.Path)
}

// LoadError reports a config file that could not be read or decoded.
type LoadError struct {
	Path string
	Op   string // "read" or "parse"
	Err  error
}

func (e *LoadError) Error() string {
	if e.Op == "parse" {
		return fmt.Sprintf("Invalid config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("Problem loading config file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError describes one rejected setting or action entry.
// Entry is the zero-based action index, or -1 for top-level settings.
type ValidationError struct {
	Entry       int
	Description string
	Field       string // missing or invalid field, if any
	Key         string // offending key token, if any
	Reason      string
}

func (e *ValidationError) Error() string {
	if e.Entry < 0 {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("action #%d %q: %s", e.Entry+1, e.Description, e.Reason)
}
