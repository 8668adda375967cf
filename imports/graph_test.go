package imports

import (
	"strings"
	"testing"
)

func step(code string, deps ...DependencyRef) StepEntry {
	return StepEntry{StepCode: code, Dependencies: deps}
}

func dep(code string) DependencyRef {
	return DependencyRef{Code: code, Type: DependencyTypeFinish}
}

func TestDetectCycles_AcyclicChain(t *testing.T) {
	steps := []StepEntry{
		step("CUT"),
		step("SEW", dep("CUT")),
		step("PACK", dep("SEW"), dep("CUT")),
	}
	if cycles := DetectCycles(steps); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	steps := []StepEntry{step("A", dep("A"))}
	cycles := DetectCycles(steps)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", cycles)
	}
	if cycles[0] != "A -> A" {
		t.Fatalf("unexpected cycle description %q", cycles[0])
	}
}

func TestDetectCycles_ReportsCyclePath(t *testing.T) {
	steps := []StepEntry{
		step("A", dep("B")),
		step("B", dep("C")),
		step("C", dep("A")),
	}
	cycles := DetectCycles(steps)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", cycles)
	}
	cycle := cycles[0]
	if !strings.HasPrefix(cycle, "A ->") || !strings.HasSuffix(cycle, "-> A") {
		t.Fatalf("cycle path should start and end at the same code: %q", cycle)
	}
	for _, code := range []string{"A", "B", "C"} {
		if !strings.Contains(cycle, code) {
			t.Fatalf("cycle %q missing member %s", cycle, code)
		}
	}
}

func TestDetectCycles_DisconnectedComponents(t *testing.T) {
	steps := []StepEntry{
		step("A", dep("B")),
		step("B"),
		step("X", dep("Y")),
		step("Y", dep("X")),
	}
	cycles := DetectCycles(steps)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", cycles)
	}
	if !strings.Contains(cycles[0], "X") || !strings.Contains(cycles[0], "Y") {
		t.Fatalf("unexpected cycle %q", cycles[0])
	}
}

func TestDetectCycles_IgnoresOutOfBatchTargets(t *testing.T) {
	// Dependencies on codes not in the set are cross-batch warnings, not
	// graph edges.
	steps := []StepEntry{step("A", dep("MISSING"))}
	if cycles := DetectCycles(steps); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}
