package dsl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TypeKey marks typed subtrees.
const TypeKey = "_type"

const (
	TypeProcess    = "process"
	TypeTask       = "task"
	TypeSimulation = "simulation"
)

// Builder manages a path-addressed document tree.
type Builder struct {
	tree map[string]any
}

// New creates a builder over tree, or over an empty tree if tree is nil.
func New(tree map[string]any) *Builder {
	if tree == nil {
		tree = make(map[string]any)
	}
	return &Builder{tree: tree}
}

// NewSED creates a builder with the sections of a simulation experiment document.
func NewSED(ontologies ...string) *Builder {
	b := New(nil)
	if ontologies == nil {
		ontologies = []string{}
	}
	b.tree["ontologies"] = ontologies
	b.tree["models"] = map[string]any{}
	b.tree["simulators"] = map[string]any{}
	b.tree["tasks"] = map[string]any{}
	return b
}

// Parse reads a document from JSON or YAML.
func Parse(data []byte) (*Builder, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return New(tree), nil
}

// Set stores value at path, creating intermediate maps.
// It fails if a non-map value is in the way.
func (b *Builder) Set(value any, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("empty path")
	}
	parent, err := b.ensure(path[:len(path)-1])
	if err != nil {
		return err
	}
	parent[path[len(path)-1]] = value
	return nil
}

// Get returns the value at path.
func (b *Builder) Get(path ...string) (any, bool) {
	var cur any = b.tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// At returns the node at path, creating it if missing.
// A path through a non-map value yields a detached node that fails on export.
func (b *Builder) At(path ...string) *Node {
	m, err := b.ensure(path)
	return &Node{m: m, path: path, err: err, builder: b}
}

// Root returns the top-level node.
func (b *Builder) Root() *Node { return b.At() }

// Tree returns the underlying document.
func (b *Builder) Tree() map[string]any { return b.tree }

// AddModel registers a model source under models.
func (b *Builder) AddModel(id, source string) *Builder {
	b.At("models").m[id] = map[string]any{"id": id, "source": source}
	return b
}

// AddSimulator registers a simulator under simulators.
func (b *Builder) AddSimulator(id, kind string) *Builder {
	b.At("simulators").m[id] = map[string]any{"id": id, TypeKey: kind}
	return b
}

// AddProcess adds a process at the top level.
func (b *Builder) AddProcess(id string, spec ProcessSpec) *Node {
	return b.Root().AddProcess(id, spec)
}

// AddTask adds a task under tasks and returns it.
func (b *Builder) AddTask(id string) *Node {
	return b.At("tasks").AddTask(id, nil, nil)
}

// JSON renders the document as indented JSON.
func (b *Builder) JSON() ([]byte, error) {
	return json.MarshalIndent(b.tree, "", "  ")
}

// YAML renders the document as YAML.
func (b *Builder) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b.tree); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document as YAML or JSON depending on the extension.
func (b *Builder) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = b.YAML()
	case ".json":
		data, err = b.JSON()
	default:
		return fmt.Errorf("unsupported document format: %s", path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (b *Builder) ensure(path []string) (map[string]any, error) {
	cur := b.tree
	for i, key := range path {
		next, ok := cur[key]
		if !ok {
			m := make(map[string]any)
			cur[key] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is a %T, not a node", strings.Join(path[:i+1], "."), next)
		}
		cur = m
	}
	return cur, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
