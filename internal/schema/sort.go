package schema

import "log"

// SortTablesByDependency orders tables so referenced tables come before the
// tables referencing them. Cycles are broken greedily by picking the table
// with the fewest unsatisfied dependencies, name as tie-breaker, which keeps
// the output deterministic for unchanged schemas.
func SortTablesByDependency(tables []*Table) []*Table {
	var sorted []*Table
	processed := make(map[string]bool)

	for len(sorted) < len(tables) {
		added := false

		// Pass 1: Add tables whose dependencies are fully satisfied.
		for _, t := range tables {
			if processed[t.Name] {
				continue
			}

			allDepsProcessed := true
			for _, depName := range t.Dependencies {
				if !processed[depName] {
					allDepsProcessed = false
					break
				}
			}

			if allDepsProcessed {
				sorted = append(sorted, t)
				processed[t.Name] = true
				added = true
			}
		}

		// Pass 2: Nothing added means a cycle. Break it.
		if !added {
			var best *Table
			bestUnmet := -1

			for _, t := range tables {
				if processed[t.Name] {
					continue
				}
				unmet := 0
				for _, dep := range t.Dependencies {
					if !processed[dep] {
						unmet++
					}
				}
				if best == nil || unmet < bestUnmet || (unmet == bestUnmet && t.Name < best.Name) {
					best = t
					bestUnmet = unmet
				}
			}

			if best == nil {
				// Unreachable while sorted < tables; guard anyway.
				break
			}
			log.Printf("[sort] breaking circular dependency at table %s", best.Name)
			sorted = append(sorted, best)
			processed[best.Name] = true
		}
	}

	return sorted
}
