package callgraph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// собрать уникальные имена, отсортировать, раздать ID по порядку
func BuildIndex(names []string) Index {
	uniq := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			uniq[n] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(uniq))
	for n := range uniq {
		sorted = append(sorted, n)
	}
	slices.Sort(sorted)

	nameToID := make(map[string]NodeID, len(sorted))
	for i, n := range sorted {
		nameToID[n] = mustID(i)
	}
	return Index{NameToID: nameToID, IDToName: sorted}
}

func mustID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}
