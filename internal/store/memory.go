package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Memory is a tree-shaped in-memory Client used in tests and when no
// store is configured. It mirrors the database semantics the core
// relies on: reading a parent path returns the whole subtree, writing
// null removes a node, and empty parents do not exist.
type Memory struct {
	mu   sync.RWMutex
	root map[string]interface{}
}

func NewMemory() *Memory {
	return &Memory{root: map[string]interface{}{}}
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// normalize round-trips a value through JSON so stored data has the
// same shape it would have after a real store read.
func normalize(value interface{}) (interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, path string, into interface{}) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.lookup(splitPath(path))
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, into)
}

func (m *Memory) Set(_ context.Context, path string, value interface{}) error {
	norm, err := normalize(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.write(splitPath(path), norm)
	return nil
}

func (m *Memory) Update(_ context.Context, path string, values map[string]interface{}) error {
	base := splitPath(path)

	// Normalize everything up front so a marshal failure leaves the
	// tree untouched, matching the all-or-nothing multi-path write.
	normalized := make(map[string][]string, len(values))
	normValues := make(map[string]interface{}, len(values))
	for rel, v := range values {
		norm, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[rel] = append(append([]string{}, base...), splitPath(rel)...)
		normValues[rel] = norm
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for rel, segments := range normalized {
		m.write(segments, normValues[rel])
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.write(splitPath(path), nil)
	return nil
}

func (m *Memory) lookup(segments []string) (interface{}, bool) {
	var node interface{} = m.root
	for _, s := range segments {
		asMap, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		node, ok = asMap[s]
		if !ok {
			return nil, false
		}
	}
	if asMap, ok := node.(map[string]interface{}); ok && len(asMap) == 0 {
		return nil, false
	}
	return node, true
}

// write sets or (for nil) removes the node at segments, pruning parents
// that become empty.
func (m *Memory) write(segments []string, value interface{}) {
	if len(segments) == 0 {
		if asMap, ok := value.(map[string]interface{}); ok {
			m.root = asMap
		} else {
			m.root = map[string]interface{}{}
		}
		return
	}

	parents := make([]map[string]interface{}, 0, len(segments))
	node := m.root
	for _, s := range segments[:len(segments)-1] {
		parents = append(parents, node)
		child, ok := node[s].(map[string]interface{})
		if !ok {
			if value == nil {
				return
			}
			child = map[string]interface{}{}
			node[s] = child
		}
		node = child
	}
	parents = append(parents, node)

	last := segments[len(segments)-1]
	if value == nil {
		delete(node, last)
	} else {
		node[last] = value
	}

	// Prune empty maps bottom-up.
	for i := len(segments) - 1; i > 0; i-- {
		if len(parents[i]) == 0 {
			delete(parents[i-1], segments[i-1])
		}
	}
}
