// Package align reconciles an indexed value with the labels it is written
// to. Matching is by label equality, never by position.
package align
