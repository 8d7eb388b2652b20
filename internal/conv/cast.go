package conv

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// RowCount validates that n rows are addressable by a 32-bit bitmap.
func RowCount(n int) error {
	if n < 0 {
		return fmt.Errorf("row count %d is negative", n)
	}
	// On 64-bit systems, int can exceed uint32 max; on 32-bit, this is always false
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("row count %d exceeds %d", n, uint32(math.MaxUint32))
	}
	return nil
}

// Positions returns the set bits of bm in ascending order.
func Positions(bm *roaring.Bitmap) []int {
	if bm == nil || bm.IsEmpty() {
		return nil
	}
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Mask builds a bitmap with bit i set where mask[i] is true.
func Mask(mask []bool) *roaring.Bitmap {
	bm := roaring.New()
	for i, set := range mask {
		if set {
			bm.Add(uint32(i))
		}
	}
	return bm
}
