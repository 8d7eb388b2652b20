// Package index provides row indexes: ordered, possibly duplicated labels
// with label to position lookup backed by Roaring Bitmap postings.
package index
