package pscal

import "slices"

// addOrdinal appends o unless it is already present
func addOrdinal(values []int64, o int64) []int64 {
	if slices.Contains(values, o) {
		return values
	}
	return append(values, o)
}

// SetContains reports whether ordinal o is a member of s
func SetContains(s *Value, o int64) bool {
	return slices.Contains(s.SetValues, o)
}

// SetUnion returns a new set with the members of a followed by those of b
func SetUnion(a, b *Value) Value {
	out := Value{Type: TypeSet, BaseTypeNode: a.BaseTypeNode}
	for _, o := range a.SetValues {
		out.SetValues = addOrdinal(out.SetValues, o)
	}
	for _, o := range b.SetValues {
		out.SetValues = addOrdinal(out.SetValues, o)
	}
	return out
}

// SetDifference returns a new set with the members of a not in b
func SetDifference(a, b *Value) Value {
	out := Value{Type: TypeSet, BaseTypeNode: a.BaseTypeNode}
	for _, o := range a.SetValues {
		if !SetContains(b, o) {
			out.SetValues = addOrdinal(out.SetValues, o)
		}
	}
	return out
}

// SetIntersection returns a new set with the members of a also in b
func SetIntersection(a, b *Value) Value {
	out := Value{Type: TypeSet, BaseTypeNode: a.BaseTypeNode}
	for _, o := range a.SetValues {
		if SetContains(b, o) {
			out.SetValues = addOrdinal(out.SetValues, o)
		}
	}
	return out
}

// SetEqual compares membership, ignoring order
func SetEqual(a, b *Value) bool {
	if len(a.SetValues) != len(b.SetValues) {
		return false
	}
	for _, o := range a.SetValues {
		if !SetContains(b, o) {
			return false
		}
	}
	return true
}

// SetInclude adds an ordinal to s in place
func SetInclude(s *Value, o int64) {
	s.SetValues = addOrdinal(s.SetValues, o)
}

// SetExclude removes an ordinal from s in place
func SetExclude(s *Value, o int64) {
	if i := slices.Index(s.SetValues, o); i >= 0 {
		s.SetValues = slices.Delete(s.SetValues, i, i+1)
	}
}
