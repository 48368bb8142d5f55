package pscal

// FreeValue releases everything v owns and leaves it in a cleared state, so
// a second call is a no-op. The discriminant is kept.
//
// A pointer only loses its own address. The pointee belongs to whoever
// called New and is released by Dispose alone.
func FreeValue(v *Value) {
	if v == nil {
		return
	}
	switch v.Type {
	case TypeString:
		v.Str = nil

	case TypeEnum:
		v.EnumName = ""

	case TypeRecord:
		for f := v.Record; f != nil; {
			next := f.Next
			FreeValue(&f.Value)
			f.Name = ""
			f.Next = nil
			f = next
		}
		v.Record = nil

	case TypeArray:
		n := v.elementCount()
		if n > len(v.Elems) {
			n = len(v.Elems)
		}
		for i := 0; i < n; i++ {
			FreeValue(&v.Elems[i])
		}
		v.Elems = nil
		v.LowerBounds = nil
		v.UpperBounds = nil
		v.Dimensions = 0

	case TypeSet:
		v.SetValues = nil

	case TypeMemoryStream:
		if v.MStream != nil {
			v.MStream.Buffer = nil
		}
		v.MStream = nil

	case TypeFile:
		if v.File != nil {
			_ = v.File.Close()
			v.File = nil
		}
		v.Filename = ""

	case TypePointer:
		v.Ptr = 0
	}
}
