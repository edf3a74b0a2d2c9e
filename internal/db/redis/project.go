package redis

import (
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
)

// project applies source filtering in process: FT.SEARCH returns whole JSON
// documents. Paths are dotted and address nested objects.
func project(source map[string]any, p compiled.Projection) map[string]any {
	if p.IsEmpty() || source == nil {
		return source
	}

	out := source
	if len(p.Include) > 0 {
		out = make(map[string]any, len(p.Include))
		for _, path := range p.Include {
			if v, ok := lookupPath(source, path); ok {
				setPath(out, path, v)
			}
		}
	}
	for _, path := range p.Exclude {
		deletePath(out, path)
	}
	return out
}

func lookupPath(m map[string]any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := m[head]
	if !ok || !nested {
		return v, ok
	}
	child, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return lookupPath(child, rest)
}

func setPath(m map[string]any, path string, v any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		m[head] = v
		return
	}
	child, ok := m[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[head] = child
	}
	setPath(child, rest, v)
}

func deletePath(m map[string]any, path string) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		delete(m, head)
		return
	}
	if child, ok := m[head].(map[string]any); ok {
		deletePath(child, rest)
	}
}
