// Package trace hooks the runtime execution tracer up to an environment
// variable, so a slow completion can be captured without a rebuild:
//
//	NACRE_TRACE=trace.out nacre-suggest complete ''
//	go tool trace trace.out
package trace

import (
	"fmt"
	"os"
	"runtime/trace"
)

// Init starts the runtime tracer when NACRE_TRACE names a file path.
// The returned function stops the tracer and closes the file; it is
// safe to call even when tracing never started.
func Init() func() {
	path := os.Getenv("NACRE_TRACE")
	if path == "" {
		return func() {}
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nacre: cannot create trace file %s: %v\n", path, err)
		return func() {}
	}
	if err := trace.Start(f); err != nil {
		fmt.Fprintf(os.Stderr, "nacre: cannot start trace: %v\n", err)
		f.Close()
		return func() {}
	}
	fmt.Fprintf(os.Stderr, "nacre: tracing to %s\n", path)

	return func() {
		trace.Stop()
		f.Close()
	}
}
