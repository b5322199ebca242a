// Package wellformed holds the structural checks run on units before
// verification.
//
// CheckOne looks at the unit under verification alone. Check runs on the
// merged, pruned unit and resolves names against the unpruned snapshot so
// that a callee removed by pruning is told apart from one that was never
// declared. Non-fatal findings go to an advisory bag which the caller
// reports after Check returns successfully.
//
// CheckFlavor and CheckSimplifiedFlavor pin down the expression shapes
// allowed before and after simplification.
package wellformed
