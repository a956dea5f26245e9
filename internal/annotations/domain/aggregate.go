package domain

import (
	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
)

// FilterByFile keeps the annotations whose file scope equals the given one.
// Scope matching is exact: the legacy sentinel never matches a real file id.
func FilterByFile(anns []Annotation, scope projdomain.FileID) []Annotation {
	out := make([]Annotation, 0, len(anns))
	for _, a := range anns {
		if a.FileID.Equal(scope) {
			out = append(out, a)
		}
	}
	return out
}

// DedupMarkers reduces a file-scoped annotation list to one entry per atom
// serial for marker rendering, keeping the first-encountered record per
// serial in input order. Idempotent.
func DedupMarkers(anns []Annotation) []Annotation {
	seen := make(map[int]struct{}, len(anns))
	out := make([]Annotation, 0, len(anns))
	for _, a := range anns {
		if _, ok := seen[a.Atom.Serial]; ok {
			continue
		}
		seen[a.Atom.Serial] = struct{}{}
		out = append(out, a)
	}
	return out
}

// FileGroup is one sidebar thread group: all annotations of one file scope
// in creation order.
type FileGroup struct {
	Key         string       `json:"file_id"`
	Annotations []Annotation `json:"annotations"`
}

// GroupByFile partitions a project's annotations by file scope with a single
// left-to-right fold. Group order is first-seen key order from the source
// list; within a group the input (creation) order is preserved.
func GroupByFile(anns []Annotation) []FileGroup {
	index := make(map[string]int, 4)
	groups := make([]FileGroup, 0, 4)
	for _, a := range anns {
		key := a.FileKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, FileGroup{Key: key})
		}
		groups[i].Annotations = append(groups[i].Annotations, a)
	}
	return groups
}
