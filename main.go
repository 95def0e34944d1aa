//go:build js && wasm

package main

import (
	"context"
	"log/slog"

	"github.com/vcrobe/lazydom/appcomponents"
	"github.com/vcrobe/lazydom/console"
	"github.com/vcrobe/lazydom/dom"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/vdom"
)

func main() {
	logger := console.NewBrowser(slog.LevelInfo)

	// 1. Find the mount point
	doc := dom.NewJSDocument()
	host := doc.QuerySelector("#app")
	if host == nil {
		logger.Error("mount point not found", "selector", "#app")
		return
	}

	// 2. Handlers of the deferred components load from the chunk manifest
	manifest, err := appcomponents.Manifest(nil)
	if err != nil {
		logger.Error("invalid chunk manifest", "error", err)
		return
	}
	loader, err := appcomponents.NewChunkLoader(manifest)
	if err != nil {
		logger.Error("invalid chunk loader", "error", err)
		return
	}

	// 3. Mount the demo components
	tree := vdom.Fragment(
		appcomponents.HelloWorld.New(nil),
		appcomponents.Counter.New(runtime.Props{"value": 15, "step": 5}),
		appcomponents.Items.New(runtime.Props{"items": appcomponents.NewItemsState(
			map[string]any{"done": true, "title": "Task 1"},
			map[string]any{"done": false, "title": "Task 2"},
		)}),
	)
	r, err := runtime.Render(context.Background(), host, tree,
		runtime.WithLogger(logger),
		runtime.WithLoader(loader),
	)
	if err != nil {
		logger.Error("initial render failed", "error", err)
		return
	}

	// 4. Apply deferred handlers as their chunks load. Event callbacks and
	// this loop never run at the same time: the wasm runtime hands control
	// back to JS only once every goroutine is blocked.
	for range r.Loaded() {
		r.Flush()
	}
}
