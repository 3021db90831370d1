// Package processor holds the static per-language processor table (C1):
// container image, source filename, compile flag, and the compile/run
// command templates that parameterize the sandbox executor.
package processor

import (
	"fmt"

	"judgecore/pkg/errors"
)

// Processor describes a single language+toolchain profile. Immutable,
// loaded once into Registry.
type Processor struct {
	ID            string
	Image         string
	CodeFilename  string
	Language      string
	NeedsCompile  bool
	compileTpl    string // %s = work_dir
	runTpl        string // %[2]d = timeout_sec; %[1]s, %[3]s, %[4]s, %[5]s = work_dir
}

// CompileCmd returns the compile command for workDir, or "" if the
// processor does not need compilation.
func (p Processor) CompileCmd(workDir string) string {
	if !p.NeedsCompile {
		return ""
	}
	return fmt.Sprintf(p.compileTpl, workDir, workDir)
}

// FinalCmd returns the wrapped run command: it redirects stdin from
// input.txt, stdout to output.txt, and records wall-time to time.txt,
// enforced by a hard timeout of timeoutSec seconds.
func (p Processor) FinalCmd(workDir string, timeoutSec int) string {
	return fmt.Sprintf(p.runTpl, workDir, timeoutSec, workDir, workDir, workDir)
}

// Registry is the static processor-id -> Processor table.
var Registry = map[string]Processor{
	"c++17": {
		ID:           "c++17",
		Image:        "gcc:13",
		CodeFilename: "main.cpp",
		Language:     "C++17",
		NeedsCompile: true,
		compileTpl:   "g++ -O2 -std=c++17 -o %s/a.out %s/main.cpp",
		runTpl:       "/usr/bin/time -o %[3]s/time.txt -f '%%e' timeout %[2]ds %[1]s/a.out < %[4]s/input.txt > %[5]s/output.txt",
	},
	"python3": {
		ID:           "python3",
		Image:        "python:3.11-slim",
		CodeFilename: "main.py",
		Language:     "Python 3",
		NeedsCompile: false,
		runTpl:       "/usr/bin/time -o %[3]s/time.txt -f '%%e' timeout %[2]ds python3 %[1]s/main.py < %[4]s/input.txt > %[5]s/output.txt",
	},
	"java17": {
		ID:           "java17",
		Image:        "eclipse-temurin:17",
		CodeFilename: "Main.java",
		Language:     "Java 17",
		NeedsCompile: true,
		compileTpl:   "javac -d %s %s/Main.java",
		runTpl:       "/usr/bin/time -o %[3]s/time.txt -f '%%e' timeout %[2]ds java -cp %[1]s Main < %[4]s/input.txt > %[5]s/output.txt",
	},
	"go1": {
		ID:           "go1",
		Image:        "golang:1.22",
		CodeFilename: "main.go",
		Language:     "Go 1",
		NeedsCompile: true,
		compileTpl:   "go build -o %s/app %s/main.go",
		runTpl:       "/usr/bin/time -o %[3]s/time.txt -f '%%e' timeout %[2]ds %[1]s/app < %[4]s/input.txt > %[5]s/output.txt",
	},
}

// Lookup returns the processor for id, or errors.UnsupportedProcessor if
// id is not registered.
func Lookup(id string) (Processor, error) {
	p, ok := Registry[id]
	if !ok {
		return Processor{}, errors.Newf(errors.UnsupportedProcessor, "unsupported processor: %s", id)
	}
	return p, nil
}
