package merge

import (
	"context"
	"strconv"

	"venir/internal/ir"
	"venir/internal/prune"
	"venir/internal/trace"
)

// Result is the output of MergeAndPrune.
type Result struct {
	// Unit is the merged unit pruned to what Current reaches.
	Unit *ir.Unit
	// Unpruned is the merged unit before pruning; the merged
	// well-formedness check resolves names against it.
	Unpruned *ir.Unit
	// Current is the sorted input unit with the merged word width.
	Current        *ir.Unit
	CurrentModules []ir.Module
	// UnitNames lists the participating units, the current one first.
	UnitNames []string
}

// MergeAndPrune sorts current, merges it after the imported units, prunes
// the merge with current as the root, merges split trait declarations and
// copies the final word width back onto current.
func MergeAndPrune(ctx context.Context, current *ir.Unit, imported []ir.Library) (*Result, error) {
	_, sp := trace.Start(ctx, trace.ScopePass, "merge_and_prune")
	defer sp.End("")

	sorted := ir.Sort(current)

	units := make([]*ir.Unit, 0, len(imported)+1)
	for _, lib := range imported {
		units = append(units, lib.Unit)
	}
	units = append(units, sorted)
	unpruned, err := Units(units...)
	if err != nil {
		return nil, err
	}

	pruned := prune.Unit(unpruned, prune.Options{Root: sorted})
	pruned = ExternalTraits(pruned)

	cur := sorted.Clone()
	cur.Arch.WordBits = pruned.Arch.WordBits

	names := make([]string, 0, len(imported)+1)
	names = append(names, current.Name)
	for _, lib := range imported {
		names = append(names, lib.Name)
	}
	sp.WithExtra("functions", strconv.Itoa(len(pruned.Functions)))

	return &Result{
		Unit:           pruned,
		Unpruned:       unpruned,
		Current:        cur,
		CurrentModules: cur.Modules,
		UnitNames:      names,
	}, nil
}
