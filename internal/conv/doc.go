// Package conv converts between row positions (Go ints) and the 32-bit
// Roaring Bitmaps used for masks and index postings.
//
// Row positions are bounded by math.MaxUint32; RowCount rejects larger
// tables up front so that later conversions are provably safe and use direct
// casts.
package conv
