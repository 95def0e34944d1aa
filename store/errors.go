package store

import "fmt"

// AccessError reports an access outside a valid store wrapper or a value of
// an unexpected shape. It signals a programmer error and is raised by panic.
type AccessError struct {
	Op     string
	Detail string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("store access error: %s: %s", e.Op, e.Detail)
}

func accessPanic(op, format string, args ...any) {
	panic(&AccessError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
