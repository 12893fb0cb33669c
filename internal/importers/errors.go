package importers

import "fmt"

// ImportError reports a file the chapter parser could not handle.
// Message carries the parser's own description.
type ImportError struct {
	DisplayName string
	Message     string
	Err         error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("failed to import %s: %s", e.DisplayName, e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
