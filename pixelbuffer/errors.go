package pixelbuffer

import (
	"fmt"

	"imagesearch/types"
)

// SampleRangeError reports a unit sample outside [0, 1].
type SampleRangeError struct {
	Index int
	Value float32
}

func (e *SampleRangeError) Error() string {
	return fmt.Sprintf("%v: sample %d is %v, want a value in [0, 1]", types.ErrMalformedBuffer, e.Index, e.Value)
}

func (e *SampleRangeError) Unwrap() error { return types.ErrMalformedBuffer }
