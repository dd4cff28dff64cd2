package histogram

import (
	"fmt"

	"imagesearch/types"
)

// BinCount is the default number of bins per channel.
const BinCount = 5

// Bound is the closed range of sample values counted by one bin.
type Bound struct {
	Lower uint8
	Upper uint8
}

func (b Bound) String() string {
	return fmt.Sprintf("%d-%d", b.Lower, b.Upper)
}

// ValidBinCount reports whether n splits [0, 255] into equally wide bins.
func ValidBinCount(n int) bool {
	return n >= 1 && n <= 255 && 255%n == 0
}

// Bounds returns the value range of every bin for binCount bins.
// Bin 0 covers [0, w], every later bin covers [previous upper + 1, previous upper + w]
// with w = 255 / binCount, so the first bin holds one value more than the others.
func Bounds(binCount int) ([]Bound, error) {
	if !ValidBinCount(binCount) {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidBinCount, binCount)
	}

	width := 255 / binCount
	bounds := make([]Bound, 0, binCount)
	lower, upper := 0, width
	for range binCount {
		bounds = append(bounds, Bound{Lower: uint8(lower), Upper: uint8(upper)})
		if lower == 0 {
			lower++
		}
		lower += width
		upper += width
	}
	return bounds, nil
}

// BinIndex returns the bin that counts value, walking the bins in order and
// taking the first one whose closed range contains it.
func BinIndex(value uint8, binCount int) (int, error) {
	bounds, err := Bounds(binCount)
	if err != nil {
		return 0, err
	}
	for i, b := range bounds {
		if value >= b.Lower && value <= b.Upper {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: value %d is not covered", types.ErrInvalidBinCount, value)
}

// binTable maps every sample value to its bin.
type binTable [256]uint8

func newBinTable(binCount int) (binTable, error) {
	var table binTable
	bounds, err := Bounds(binCount)
	if err != nil {
		return table, err
	}
	for v := range 256 {
		for i, b := range bounds {
			if uint8(v) >= b.Lower && uint8(v) <= b.Upper {
				table[v] = uint8(i)
				break
			}
		}
	}
	return table, nil
}
