package jsonschema

import (
	"fmt"
	"os"
	"strconv"

	"charm.land/log/v2"
)

// Runtime is the public facade (C9, §6.2): a live, reactive view over one
// JSON instance value governed by one schema, with defaults generation
// (C3), dependency tracking (C4/C8), effective-schema resolution (C5), and
// in-place node reconciliation (C6/C7) wired together. Grounded on the
// teacher's top-level Schema type as "the one struct applications hold",
// generalized from a stateless validator to a stateful, mutable runtime.
type Runtime struct {
	validator Validator
	options   RuntimeOptions
	defaults  *defaultFuncRegistry
	index     *dependencyIndex
	root      *FieldNode
	value     any
	logger    *log.Logger
}

// RemoveEmptyContainers controls the cleanup cascade performed by
// removeValue (§4.7.3, Open Question 3).
type RemoveEmptyContainers string

const (
	RemoveAuto   RemoveEmptyContainers = "auto"
	RemoveAlways RemoveEmptyContainers = "always"
	RemoveNever  RemoveEmptyContainers = "never"
)

// RuntimeOptions configures a Runtime (§6.2).
type RuntimeOptions struct {
	RemoveEmptyContainers RemoveEmptyContainers
	FillDefaults          DefaultStrategy
	Logger                *log.Logger
	// DefaultFuncs registers named dynamic default-value generators
	// (§4.3) before the initial build runs, so a "default": "name()"
	// string resolves correctly even in the very first reconciliation.
	// Equivalent to calling Runtime.RegisterDefaultFunc after
	// construction, but in time for the initial defaults fill.
	DefaultFuncs map[string]DefaultFunc
}

func defaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		RemoveEmptyContainers: RemoveAuto,
		FillDefaults:          StrategyExplicit,
	}
}

// NewRuntime dereferences schema, seeds the instance with initialValue
// (merging in generated defaults per options.FillDefaults), and builds the
// root node. A non-object/non-boolean schema is a programmer error (§7).
func NewRuntime(validator Validator, schema *Schema, initialValue any, options *RuntimeOptions) (*Runtime, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: NewRuntime requires a non-nil schema", ErrSchemaIsNil)
	}
	opts := defaultRuntimeOptions()
	if options != nil {
		opts = *options
		if opts.RemoveEmptyContainers == "" {
			opts.RemoveEmptyContainers = RemoveAuto
		}
		if opts.FillDefaults == "" {
			opts.FillDefaults = StrategyExplicit
		}
	}

	deref, err := Dereference(schema)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	rt := &Runtime{
		validator: validator,
		options:   opts,
		defaults:  newDefaultFuncRegistry(),
		index:     newDependencyIndex(logger),
		value:     initialValue,
		logger:    logger,
	}
	for name, fn := range opts.DefaultFuncs {
		rt.defaults.RegisterDefaultFunc(name, fn)
	}
	rt.root = newFieldNode("", "", deref, false)

	updating := map[string]bool{}
	rt.buildNode(rt.root, deref, updating)

	return rt, nil
}

// RegisterDefaultFunc registers a named dynamic default-value generator
// (e.g. "uuid", "now") usable via a `"default": "name(args...)"` string in
// any schema this runtime resolves defaults against.
func (rt *Runtime) RegisterDefaultFunc(name string, fn DefaultFunc) {
	rt.defaults.RegisterDefaultFunc(name, fn)
}

// GetValue returns the value at path ("" or "#" denotes the root).
func (rt *Runtime) GetValue(path string) (any, bool) {
	path = NormalizePointer(path)
	if path == "" {
		return rt.value, true
	}
	return GetPointer(rt.value, path)
}

// FindNode returns the node at path, if one currently exists.
func (rt *Runtime) FindNode(path string) (*FieldNode, bool) {
	path = NormalizePointer(path)
	node := rt.root
	for _, tok := range ParsePointer(path) {
		child := findChildByToken(node, tok)
		if child == nil {
			return nil, false
		}
		node = child
	}
	return node, true
}

func findChildByToken(node *FieldNode, token string) *FieldNode {
	want := JoinPointer(node.InstanceLocation, token)
	for _, c := range node.Children {
		if c.InstanceLocation == want {
			return c
		}
	}
	return nil
}

// GetVersion returns the monotone event counter (§4.8).
func (rt *Runtime) GetVersion() int {
	return rt.index.version
}

// Subscribe registers cb for every event at path.
func (rt *Runtime) Subscribe(path string, cb Watcher) Unsubscribe {
	return rt.index.subscribe(path, cb)
}

// SubscribeAll registers cb for every event regardless of path.
func (rt *Runtime) SubscribeAll(cb Watcher) Unsubscribe {
	return rt.index.subscribeAll(cb)
}

// SetValue writes v at path via C1 and reconciles the affected subtree
// (§4.7.3). Returns false on a pointer kind mismatch; the instance is left
// unchanged in that case.
func (rt *Runtime) SetValue(path string, v any) bool {
	path = NormalizePointer(path)
	if !SetPointer(&rt.value, path, v) {
		return false
	}
	parent, _ := ParentPointer(path)
	rt.reconcile(parent)
	node, _ := rt.FindNode(path)
	rt.index.notify(Event{Kind: EventValue, Path: path, Node: node})
	return true
}

// AddChild appends (array) or inserts (object, requires key) a new child
// under parentPath, requiring the parent's CanAdd. init, when non-nil,
// overrides the generated default.
func (rt *Runtime) AddChild(parentPath string, key string, init any) bool {
	parentPath = NormalizePointer(parentPath)
	parent, ok := rt.FindNode(parentPath)
	if !ok || !parent.CanAdd {
		return false
	}

	isArray := parent.Type == "array"
	var childKey string
	if isArray {
		arr, _ := rt.GetValue(parentPath)
		length := 0
		if a, ok := arr.([]any); ok {
			length = len(a)
		}
		childKey = strconv.Itoa(length)
	} else {
		if key == "" {
			return false
		}
		if existing, _ := rt.GetValue(parentPath); existing != nil {
			if obj, ok := existing.(map[string]any); ok {
				if _, present := obj[key]; present {
					return false
				}
			}
		}
		childKey = key
	}

	childPath := JoinPointer(parentPath, childKey)
	value := init
	if value == nil {
		var sub *Schema
		if isArray {
			sub = parent.Schema.Items
		} else {
			sub = parent.Schema.AdditionalProperties
		}
		value = computeDefault(sub, nil, rt.options.FillDefaults, rt.defaults)
	}
	if !SetPointer(&rt.value, childPath, value) {
		return false
	}

	rt.reconcile(parentPath)
	rt.index.notify(Event{Kind: EventValue, Path: parentPath, Node: parent})
	return true
}

// RemoveValue removes the value at path, requiring CanRemove on the target
// node, then applies empty-container cleanup per options.RemoveEmptyContainers
// (§4.7.3, Open Question 3).
func (rt *Runtime) RemoveValue(path string) bool {
	path = NormalizePointer(path)
	if path == "" {
		return false
	}
	node, ok := rt.FindNode(path)
	if !ok || !node.CanRemove {
		return false
	}
	if !RemovePointer(&rt.value, path) {
		return false
	}

	survivor := rt.cleanupEmptyContainers(path)
	rt.reconcile(survivor)
	survivorNode, _ := rt.FindNode(survivor)
	rt.index.notify(Event{Kind: EventValue, Path: survivor, Node: survivorNode})
	return true
}

// cleanupEmptyContainers implements §4.7.3's upward empty-container cascade
// and returns the instance location reconciliation should resume from.
func (rt *Runtime) cleanupEmptyContainers(removedPath string) string {
	current, _ := ParentPointer(removedPath)
	for current != "" {
		val, ok := rt.GetValue(current)
		if !ok || !isEmptyContainer(val) {
			break
		}
		node, ok := rt.FindNode(current)
		if !ok {
			break
		}
		if !rt.allowsCleanup(node) {
			break
		}
		parent, lastTok := ParentPointer(current)
		if lastTok == "" {
			break
		}
		if !RemovePointer(&rt.value, current) {
			break
		}
		current = parent
	}
	return current
}

func isEmptyContainer(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// allowsCleanup implements the "auto" policy's decision (§4.7.3, Open
// Question 3): an additional/pattern/items node (CanRemove) always
// qualifies; a declared-but-optional property also qualifies as long as it
// is not in its own parent's required list.
func (rt *Runtime) allowsCleanup(node *FieldNode) bool {
	switch rt.options.RemoveEmptyContainers {
	case RemoveAlways:
		return true
	case RemoveNever:
		return false
	default: // auto
		if node.CanRemove {
			return true
		}
		_, lastTok := ParentPointer(node.InstanceLocation)
		parentNode, ok := rt.FindNode(parentPathOf(node.InstanceLocation))
		if !ok || parentNode.Schema == nil {
			return false
		}
		for _, r := range parentNode.Schema.Required {
			if r == lastTok {
				return false
			}
		}
		return true
	}
}

func parentPathOf(path string) string {
	p, _ := ParentPointer(path)
	return p
}

// SetSchema replaces the root schema and rebuilds the entire tree from
// scratch (§4.7.3).
func (rt *Runtime) SetSchema(schema *Schema) error {
	deref, err := Dereference(schema)
	if err != nil {
		return err
	}
	rt.destroyChildren(rt.root, rt.root.Children)
	rt.index.unregisterAll(rt.root)
	rt.root.Children = nil

	updating := map[string]bool{}
	rt.buildNode(rt.root, deref, updating)
	rt.index.notify(Event{Kind: EventSchema, Path: "", Node: rt.root})
	return nil
}

// reconcile implements §4.6's reconcile(path): rebuilds the subtree rooted
// at the nearest existing ancestor of path.
func (rt *Runtime) reconcile(path string) {
	path = NormalizePointer(path)
	node := rt.root
	for _, tok := range ParsePointer(path) {
		child := findChildByToken(node, tok)
		if child == nil {
			break
		}
		node = child
	}
	updating := map[string]bool{}
	rt.buildNode(node, nil, updating)
}
