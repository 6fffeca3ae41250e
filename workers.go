package mdpdf

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one document is converted at a time.
	MinWorkers = 1

	// MaxWorkers caps concurrent browsers to limit memory (~200MB each).
	MaxWorkers = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolveWorkers returns the number of documents to convert concurrently.
// An explicit positive value wins; 0 derives it from GOMAXPROCS (adjusted by
// automaxprocs in containers), clamped to MinWorkers..MaxWorkers.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
