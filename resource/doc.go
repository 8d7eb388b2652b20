// Package resource bounds the memory held by staged column buffers while a
// mutation is in flight.
package resource
