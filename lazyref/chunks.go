package lazyref

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// Manifest maps chunk names to the symbols each chunk provides.
//
//	chunks:
//	  counter:
//	    - Counter_update
//	  items:
//	    - Items_toggle
type Manifest struct {
	Chunks map[string][]string `yaml:"chunks"`
}

// ParseManifest decodes a YAML manifest and checks that no symbol is listed
// by two chunks.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if _, err := m.index(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadManifest reads and parses a manifest.
func ReadManifest(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

func (m *Manifest) index() (map[string]string, error) {
	idx := make(map[string]string)
	names := make([]string, 0, len(m.Chunks))
	for name := range m.Chunks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, chunk := range names {
		for _, symbol := range m.Chunks[chunk] {
			if other, dup := idx[symbol]; dup {
				return nil, fmt.Errorf("symbol %q listed by chunks %q and %q", symbol, other, chunk)
			}
			idx[symbol] = chunk
		}
	}
	return idx, nil
}

// ChunkFunc loads a chunk and returns the symbols it defines.
type ChunkFunc func(ctx context.Context) (map[string]any, error)

// ChunkLoader resolves symbols by loading the chunk the manifest assigns
// them to. Each chunk is loaded at most once.
type ChunkLoader struct {
	index map[string]string
	group singleflight.Group

	mu     sync.RWMutex
	chunks map[string]ChunkFunc
	loaded map[string]map[string]any
	loads  int
}

var _ Loader = (*ChunkLoader)(nil)

// NewChunkLoader creates a loader for the manifest.
func NewChunkLoader(m *Manifest) (*ChunkLoader, error) {
	idx, err := m.index()
	if err != nil {
		return nil, err
	}
	return &ChunkLoader{
		index:  idx,
		chunks: make(map[string]ChunkFunc),
		loaded: make(map[string]map[string]any),
	}, nil
}

// RegisterChunk provides the loader for a chunk named in the manifest.
func (c *ChunkLoader) RegisterChunk(name string, fn ChunkFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks[name] = fn
}

// Load loads the symbol's chunk if needed and returns the symbol.
func (c *ChunkLoader) Load(ctx context.Context, symbol string) (any, error) {
	chunk, ok := c.index[symbol]
	if !ok {
		return nil, &ResolutionError{Symbol: symbol, Err: ErrSymbolNotFound}
	}
	symbols, err := c.loadChunk(ctx, chunk)
	if err != nil {
		return nil, &ResolutionError{Symbol: symbol, Chunk: chunk, Err: err}
	}
	target, ok := symbols[symbol]
	if !ok {
		return nil, &ResolutionError{Symbol: symbol, Chunk: chunk, Err: ErrSymbolNotFound}
	}
	return target, nil
}

// ChunkLoads returns how many chunk loads ran.
func (c *ChunkLoader) ChunkLoads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

func (c *ChunkLoader) loadChunk(ctx context.Context, chunk string) (map[string]any, error) {
	c.mu.RLock()
	symbols, done := c.loaded[chunk]
	fn, registered := c.chunks[chunk]
	c.mu.RUnlock()
	if done {
		return symbols, nil
	}
	if !registered {
		return nil, ErrChunkNotFound
	}
	v, err, _ := c.group.Do(chunk, func() (any, error) {
		c.mu.Lock()
		if symbols, done := c.loaded[chunk]; done {
			c.mu.Unlock()
			return symbols, nil
		}
		c.loads++
		c.mu.Unlock()

		symbols, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.loaded[chunk] = symbols
		c.mu.Unlock()
		return symbols, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}
