package jsonschema

import (
	"crypto/sha256"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/goccy/go-yaml"
	"golang.org/x/sync/singleflight"
)

// CompileYAML decodes YAML schema source to JSON and delegates to
// CompileSchema, matching the teacher's compiler.go "application/yaml"
// media-type handling.
func CompileYAML(yamlSchema []byte) (*Schema, error) {
	var decoded any
	if err := yaml.Unmarshal(yamlSchema, &decoded); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(decoded)
	if err != nil {
		return nil, err
	}
	return CompileSchema(raw)
}

// CompileSchema parses and dereferences raw schema bytes, caching the
// result by content hash and collapsing concurrent calls for the same
// bytes into a single parse (extending the teacher's compiler.go
// URI-keyed cache with a collapse-in-flight-compiles layer, since this
// runtime has no URI-based schema registry to key on).
func CompileSchema(jsonSchema []byte) (*Schema, error) {
	key := string(sha256.Sum256(jsonSchema)[:])

	compileCacheMu.RLock()
	if s, ok := compileCache[key]; ok {
		compileCacheMu.RUnlock()
		return s, nil
	}
	compileCacheMu.RUnlock()

	v, err, _ := compileGroup.Do(key, func() (any, error) {
		// A caller that missed the cache above may arrive after an earlier
		// Do for the same key has finished and cached its result.
		compileCacheMu.RLock()
		cached, ok := compileCache[key]
		compileCacheMu.RUnlock()
		if ok {
			return cached, nil
		}
		schema, err := newSchema(jsonSchema)
		if err != nil {
			return nil, err
		}
		deref, err := Dereference(schema)
		if err != nil {
			return nil, err
		}
		compileCacheMu.Lock()
		compileCache[key] = deref
		compileCacheMu.Unlock()
		return deref, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Schema), nil
}

var (
	compileGroup   singleflight.Group
	compileCacheMu sync.RWMutex
	compileCache   = map[string]*Schema{}
)
