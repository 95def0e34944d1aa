package lazyref

import (
	"errors"
	"fmt"
)

var (
	// ErrSymbolNotFound means no loader knows the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrChunkNotFound means the manifest names a chunk nobody registered.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrNotCallable means the resolved target is not a handler function.
	ErrNotCallable = errors.New("target is not callable")
	// ErrNoLoader means a deferred reference was resolved without a resolver.
	ErrNoLoader = errors.New("no loader configured")
)

// ResolutionError reports a reference whose target cannot be located or
// loaded. It is terminal for the invocation that triggered it.
type ResolutionError struct {
	Symbol string
	Chunk  string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Chunk != "" {
		return fmt.Sprintf("resolve %s (chunk %s): %v", e.Symbol, e.Chunk, e.Err)
	}
	return fmt.Sprintf("resolve %s: %v", e.Symbol, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func resolutionError(symbol string, err error) error {
	var re *ResolutionError
	if errors.As(err, &re) {
		return err
	}
	return &ResolutionError{Symbol: symbol, Err: err}
}
