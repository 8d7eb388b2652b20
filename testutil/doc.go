// Package testutil provides testing utilities for colframe.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG that generates random columns,
// masks and labels for property tests.
//
//	rng := testutil.NewRNG(seed)
//	vals := rng.Ints(100, -10, 10)   // column data
//	mask := rng.Mask(100, 0.3)       // ~30% true
//	labels := rng.Labels(100)        // unique, shuffled
package testutil
