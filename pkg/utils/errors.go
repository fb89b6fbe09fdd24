package utils

import "fmt"

// Wrap attaches message as context to err using fmt.Errorf's %w verb, so
// callers can still unwrap to the original sentinel with errors.Is/As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
