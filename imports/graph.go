package imports

import (
	"sort"
	"strings"
)

// DetectCycles reports every dependency cycle among one version's
// steps. The adjacency list is restricted to dependency targets present
// in the same step set; targets outside it are a cross-batch concern
// handled elsewhere as warnings. Returns one "A -> B -> A" description
// per cycle found, empty when the edge set is acyclic.
func DetectCycles(steps []StepEntry) []string {
	adjacency := map[string][]string{}
	inBatch := map[string]bool{}
	for _, s := range steps {
		inBatch[s.StepCode] = true
	}
	codes := make([]string, 0, len(steps))
	for _, s := range steps {
		codes = append(codes, s.StepCode)
		for _, dep := range s.Dependencies {
			if inBatch[dep.Code] {
				adjacency[s.StepCode] = append(adjacency[s.StepCode], dep.Code)
			}
		}
	}
	sort.Strings(codes)

	visited := map[string]bool{}
	onStack := map[string]bool{}
	var stack []string
	var cycles []string

	var visit func(code string)
	visit = func(code string) {
		visited[code] = true
		onStack[code] = true
		stack = append(stack, code)

		for _, next := range adjacency[code] {
			if onStack[next] {
				// Slice the path from next's first occurrence back to
				// itself: that slice is the cycle.
				start := 0
				for i, c := range stack {
					if c == next {
						start = i
						break
					}
				}
				path := append(append([]string{}, stack[start:]...), next)
				cycles = append(cycles, strings.Join(path, " -> "))
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[code] = false
	}

	// Every unvisited node is a fresh root so disconnected components
	// are covered too.
	for _, code := range codes {
		if !visited[code] {
			visit(code)
		}
	}
	return cycles
}
