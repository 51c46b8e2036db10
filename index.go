package jsonschema

import "charm.land/log/v2"

// Dependency reverse index and change notifier (C8, §4.8). Grounded on the
// teacher's registry-style maps-of-sets pattern (compare the old compiler's
// schema-cache bookkeeping), repurposed here to track which nodes depend on
// which instance paths and who is subscribed to which paths, rather than
// which schemas are cached under which URI.

// EventKind distinguishes the three notification types fired during
// reconciliation and mutation (§4.8).
type EventKind string

const (
	EventValue  EventKind = "value"
	EventSchema EventKind = "schema"
	EventError  EventKind = "error"
)

// Event is delivered to subscribers on notify.
type Event struct {
	Kind EventKind
	Path string
	Node *FieldNode
}

// Watcher is a subscriber callback.
type Watcher func(Event)

// Unsubscribe removes a previously registered watcher.
type Unsubscribe func()

type watcherEntry struct {
	id int
	cb Watcher
}

// dependencyIndex owns C8's three data structures: the reverse dependency
// map, path-keyed watchers, and global watchers, plus the monotone version
// counter. Watchers are keyed by a registration id rather than by func
// identity (Go func values aren't comparable) so subscribe/unsubscribe is
// O(1) to register and exact to remove.
type dependencyIndex struct {
	dependents     map[string]map[*FieldNode]bool
	watchers       map[string][]watcherEntry
	globalWatchers []watcherEntry
	nextWatcherID  int
	version        int
	logger         *log.Logger
}

func newDependencyIndex(logger *log.Logger) *dependencyIndex {
	return &dependencyIndex{
		dependents: map[string]map[*FieldNode]bool{},
		watchers:   map[string][]watcherEntry{},
		logger:     logger,
	}
}

// register adds node as a dependent of path (§8 invariant 4: path
// membership in dependents must mirror node.Dependencies).
func (idx *dependencyIndex) register(path string, node *FieldNode) {
	path = NormalizePointer(path)
	set, ok := idx.dependents[path]
	if !ok {
		set = map[*FieldNode]bool{}
		idx.dependents[path] = set
	}
	set[node] = true
}

// unregister removes node as a dependent of path, deleting the path entry
// once it is empty (§4.8 resource policy).
func (idx *dependencyIndex) unregister(path string, node *FieldNode) {
	path = NormalizePointer(path)
	set, ok := idx.dependents[path]
	if !ok {
		return
	}
	delete(set, node)
	if len(set) == 0 {
		delete(idx.dependents, path)
	}
}

// unregisterAll drops every dependency entry for node across all paths,
// used when a subtree is destroyed (§3 ownership/lifecycle).
func (idx *dependencyIndex) unregisterAll(node *FieldNode) {
	for path, set := range idx.dependents {
		if set[node] {
			delete(set, node)
			if len(set) == 0 {
				delete(idx.dependents, path)
			}
		}
	}
}

// dependentsOf returns the nodes currently registered as dependents of path.
func (idx *dependencyIndex) dependentsOf(path string) []*FieldNode {
	set, ok := idx.dependents[NormalizePointer(path)]
	if !ok {
		return nil
	}
	out := make([]*FieldNode, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

// subscribe registers cb for events at path (§6.2/§4.8).
func (idx *dependencyIndex) subscribe(path string, cb Watcher) Unsubscribe {
	path = NormalizePointer(path)
	id := idx.nextWatcherID
	idx.nextWatcherID++
	idx.watchers[path] = append(idx.watchers[path], watcherEntry{id: id, cb: cb})
	return func() {
		list := idx.watchers[path]
		for i, w := range list {
			if w.id == id {
				idx.watchers[path] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(idx.watchers[path]) == 0 {
			delete(idx.watchers, path)
		}
	}
}

// subscribeAll registers cb for every event regardless of path.
func (idx *dependencyIndex) subscribeAll(cb Watcher) Unsubscribe {
	id := idx.nextWatcherID
	idx.nextWatcherID++
	idx.globalWatchers = append(idx.globalWatchers, watcherEntry{id: id, cb: cb})
	return func() {
		for i, w := range idx.globalWatchers {
			if w.id == id {
				idx.globalWatchers = append(idx.globalWatchers[:i], idx.globalWatchers[i+1:]...)
				break
			}
		}
	}
}

// notify increments version and delivers event to path-specific subscribers
// (registration order) then global subscribers, swallowing and logging any
// panic a callback raises so sibling subscribers still fire (§4.8, §7).
func (idx *dependencyIndex) notify(event Event) {
	idx.version++
	path := NormalizePointer(event.Path)

	for _, w := range idx.watchers[path] {
		idx.invoke(w.cb, event)
	}
	for _, w := range idx.globalWatchers {
		idx.invoke(w.cb, event)
	}
}

func (idx *dependencyIndex) invoke(cb Watcher, event Event) {
	defer func() {
		if r := recover(); r != nil {
			if idx.logger != nil {
				idx.logger.Error("subscriber callback panicked", "event", event.Kind, "path", event.Path, "recover", r)
			}
		}
	}()
	cb(event)
}
