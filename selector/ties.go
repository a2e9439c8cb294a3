package selector

// Suppressed applies tie-break policy to conditions of one state map given in
// declaration order. When a single boolean flag and a single value equality
// target the same attribute, the later declared one wins and the earlier
// one is reported as suppressed.
func Suppressed(conds []*Expr) []bool {
	res := make([]bool, len(conds))
	for j, later := range conds {
		la, ok := later.Single()
		if !ok || la.Kind != AtomFlag && la.Kind != AtomEqual {
			continue
		}
		for i := range j {
			ea, ok := conds[i].Single()
			if !ok || ea.Name != la.Name {
				continue
			}
			if ea.Kind == AtomFlag && la.Kind == AtomEqual || ea.Kind == AtomEqual && la.Kind == AtomFlag {
				res[i] = true
			}
		}
	}
	return res
}
