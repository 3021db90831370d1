package processor

import (
	"strings"
	"testing"
)

func TestLookupUnsupportedProcessor(t *testing.T) {
	if _, err := Lookup("brainfuck"); err == nil {
		t.Fatalf("expected brainfuck to be unsupported")
	}
}

func TestCompileCmdEmptyForInterpreted(t *testing.T) {
	p, err := Lookup("python3")
	if err != nil {
		t.Fatalf("python3 must be registered: %v", err)
	}
	if p.CompileCmd("/work") != "" {
		t.Fatalf("python3 should not need a compile command")
	}
}

func TestFinalCmdRedirectsStdinStdoutAndTime(t *testing.T) {
	p, err := Lookup("c++17")
	if err != nil {
		t.Fatalf("c++17 must be registered: %v", err)
	}
	cmd := p.FinalCmd("/work", 2)
	for _, want := range []string{"< /work/input.txt", "> /work/output.txt", "/work/time.txt", "timeout 2s"} {
		if !strings.Contains(cmd, want) {
			t.Fatalf("final cmd %q missing %q", cmd, want)
		}
	}
}

func TestCompileCmdNonEmptyWhenNeedsCompile(t *testing.T) {
	for _, id := range []string{"c++17", "java17", "go1"} {
		p, err := Lookup(id)
		if err != nil {
			t.Fatalf("%s must be registered: %v", id, err)
		}
		if !p.NeedsCompile {
			t.Fatalf("%s should need compile", id)
		}
		if p.CompileCmd("/work") == "" {
			t.Fatalf("%s compile command should not be empty", id)
		}
	}
}
