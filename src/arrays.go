package pscal

import "math"

// TotalElements returns the product of all extents. Missing or inverted
// bounds count as zero elements; an overflowing product is ErrAllocation.
func TotalElements(lower, upper []int) (int, error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return 0, nil
	}
	total := 1
	for i := range lower {
		if lower[i] > upper[i] {
			return 0, nil
		}
		// upper-lower itself may wrap for bounds near the int limits
		span := upper[i] - lower[i]
		if span < 0 || span >= math.MaxInt32 {
			return 0, runtimeErrorf(ErrAllocation, "dimension %d spans %d..%d, too many elements", i+1, lower[i], upper[i])
		}
		extent := span + 1
		if total > math.MaxInt32/extent {
			return 0, runtimeErrorf(ErrAllocation, "array size overflow at dimension %d", i+1)
		}
		total *= extent
	}
	return total, nil
}

// elementCount is TotalElements for an existing array, never failing
func (v *Value) elementCount() int {
	n, err := TotalElements(v.LowerBounds, v.UpperBounds)
	if err != nil {
		return 0
	}
	return n
}

// ComputeFlatOffset maps N indices to a row-major offset into arr.Elems.
// Dimensions are checked last to first; any index outside its bounds is
// ErrOutOfBounds and nothing is clamped.
func ComputeFlatOffset(arr *Value, indices []int) (int, error) {
	if arr == nil || arr.Type != TypeArray {
		return 0, runtimeErrorf(ErrNotArray, "cannot index a non-array value")
	}
	if len(indices) != arr.Dimensions {
		return 0, runtimeErrorf(ErrIndexArity, "array has %d dimension(s) but %d index value(s) given",
			arr.Dimensions, len(indices))
	}
	offset := 0
	multiplier := 1
	for i := arr.Dimensions - 1; i >= 0; i-- {
		lo, hi := arr.LowerBounds[i], arr.UpperBounds[i]
		idx := indices[i]
		if idx < lo || idx > hi {
			return 0, runtimeErrorf(ErrOutOfBounds, "index %d out of bounds [%d..%d] in dimension %d",
				idx, lo, hi, i+1)
		}
		offset += (idx - lo) * multiplier
		multiplier *= hi - lo + 1
	}
	return offset, nil
}

// MakeArrayND builds an N-dimensional array whose elements are the zero value
// of elemType. Construction with a type definition goes through
// MakeValueForType, which fills every slot recursively.
func MakeArrayND(lower, upper []int, elemType VarType, elemDef *Node) (Value, error) {
	if len(lower) != len(upper) {
		return Value{}, runtimeErrorf(ErrIndexArity, "bounds arrays differ in length (%d vs %d)", len(lower), len(upper))
	}
	total, err := TotalElements(lower, upper)
	if err != nil {
		return Value{}, err
	}
	v := Value{
		Type:           TypeArray,
		Dimensions:     len(lower),
		LowerBounds:    append([]int(nil), lower...),
		UpperBounds:    append([]int(nil), upper...),
		ElementType:    elemType,
		ElementTypeDef: elemDef,
		Elems:          make([]Value, total),
	}
	for i := range v.Elems {
		v.Elems[i] = zeroValueOf(elemType)
	}
	return v, nil
}

// zeroValueOf returns the default of a type that needs no definition node
func zeroValueOf(t VarType) Value {
	switch t {
	case TypeString:
		return MakeString("")
	case TypeChar:
		return MakeChar(0)
	case TypeSet:
		return Value{Type: TypeSet}
	case TypeMemoryStream:
		return MakeMStream()
	case TypeRecord:
		return Value{Type: TypeRecord}
	case TypeArray:
		return Value{Type: TypeArray}
	}
	if t.IsRealLike() {
		return makeRealOf(t, 0)
	}
	return Value{Type: t}
}

// ArrayElement returns the element cell addressed by indices
func ArrayElement(arr *Value, indices []int) (*Value, error) {
	offset, err := ComputeFlatOffset(arr, indices)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(arr.Elems) {
		return nil, runtimeErrorf(ErrOutOfBounds, "flat offset %d outside array of %d element(s)", offset, len(arr.Elems))
	}
	return &arr.Elems[offset], nil
}
