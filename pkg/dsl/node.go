package dsl

// Node provides a fluent API for adding typed entries under one path of the tree.
type Node struct {
	m       map[string]any
	path    []string
	err     error
	builder *Builder
}

// Path returns the node's location.
func (n *Node) Path() []string { return append([]string(nil), n.path...) }

// Err reports whether the node could be created.
func (n *Node) Err() error { return n.err }

// Set stores a plain value under key.
func (n *Node) Set(key string, value any) *Node {
	if n.err == nil {
		n.m[key] = value
	}
	return n
}

// AddProcess adds a process entry under id and returns n.
func (n *Node) AddProcess(id string, spec ProcessSpec) *Node {
	if n.err == nil {
		n.m[id] = spec.tree()
	}
	return n
}

// AddTask adds a task under id and returns the task node.
func (n *Node) AddTask(id string, inputs, outputs map[string]any) *Node {
	if inputs == nil {
		inputs = map[string]any{}
	}
	if outputs == nil {
		outputs = map[string]any{}
	}
	task := map[string]any{
		TypeKey:   TypeTask,
		"inputs":  inputs,
		"outputs": outputs,
	}
	if n.err == nil {
		n.m[id] = task
	}
	return &Node{m: task, path: append(n.Path(), id), err: n.err, builder: n.builder}
}

// AddSimulation adds a simulation under id and returns the simulation node.
func (n *Node) AddSimulation(id string, sim Simulation) *Node {
	entry := map[string]any{
		TypeKey:  TypeSimulation,
		"config": sim.tree(),
	}
	if n.err == nil {
		n.m[id] = entry
	}
	return &Node{m: entry, path: append(n.Path(), id), err: n.err, builder: n.builder}
}
