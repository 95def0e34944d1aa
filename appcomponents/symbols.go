package appcomponents

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
)

//go:embed manifest.yaml
var manifestYAML []byte

// Handlers returns the handler symbols the components bind.
func Handlers() map[string]any {
	return map[string]any{
		CounterUpdate: lazyref.Func(counterUpdate),
		ItemsToggle:   lazyref.Func(itemsToggleHandler),
	}
}

// RegisterSymbols adds every handler to reg.
func RegisterSymbols(reg *lazyref.Registry) {
	for symbol, target := range Handlers() {
		reg.Register(symbol, target)
	}
}

// Manifest parses data as the chunk layout of the handlers. Empty data
// selects the built-in layout.
func Manifest(data []byte) (*lazyref.Manifest, error) {
	if len(data) == 0 {
		data = manifestYAML
	}
	return lazyref.ParseManifest(data)
}

// NewChunkLoader creates a loader serving the handlers as chunks laid out
// by m. Every chunk named by m must hold only known handlers.
func NewChunkLoader(m *lazyref.Manifest) (*lazyref.ChunkLoader, error) {
	loader, err := lazyref.NewChunkLoader(m)
	if err != nil {
		return nil, err
	}
	handlers := Handlers()
	for chunk, symbols := range m.Chunks {
		for _, symbol := range symbols {
			if _, ok := handlers[symbol]; !ok {
				return nil, fmt.Errorf("chunk %q lists unknown symbol %q", chunk, symbol)
			}
		}
		loader.RegisterChunk(chunk, func(context.Context) (map[string]any, error) {
			out := make(map[string]any, len(symbols))
			for _, symbol := range symbols {
				out[symbol] = handlers[symbol]
			}
			return out, nil
		})
	}
	return loader, nil
}

// NewRegistry registers the named components.
func NewRegistry() (*runtime.Registry, error) {
	return runtime.NewRegistry(Counter, Items, ItemDetail)
}
