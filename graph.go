package spreadsheet

// hasPathTo reports whether a path of committed outgoing edges leads from
// from to target, including the trivial zero-length path (from == target).
// Cell.set calls this once per tentative referent, before committing
// anything, so a formula that would close a cycle is rejected with the
// graph left exactly as it was.
func hasPathTo(from, target *Cell) bool {
	if from == target {
		return true
	}
	visited := make(map[*Cell]struct{})
	var walk func(*Cell) bool
	walk = func(cell *Cell) bool {
		if cell == target {
			return true
		}
		if _, seen := visited[cell]; seen {
			return false
		}
		visited[cell] = struct{}{}
		for next := range cell.outgoing {
			if walk(next) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// invalidate walks incoming edges from edited, dropping the memoized Number
// cache of every formula cell reached. edited itself is seeded into the
// visited set so it is never revisited, but its own cache (if any) is
// cleared before the walk begins — it is the cell whose content just
// changed. The committed graph is acyclic by the time this runs (hasPathTo
// already rejected anything that would have closed a cycle), so a plain
// visited set is enough; no recursion-stack bookkeeping is needed.
func invalidate(edited *Cell) {
	edited.hasCache = false
	if edited.formula != nil {
		edited.formula.InvalidateCache()
	}

	visited := map[*Cell]struct{}{edited: {}}
	var walk func(*Cell)
	walk = func(cell *Cell) {
		for dependent := range cell.incoming {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			dependent.hasCache = false
			if dependent.formula != nil {
				dependent.formula.InvalidateCache()
			}
			walk(dependent)
		}
	}
	walk(edited)
}
