package pscal

// MakeCopyOfValue returns a value with the same discriminant and entirely
// independent storage. Pointers copy their address (an alias, not the
// pointee). A file copy keeps the filename but not the open handle, so each
// handle is closed exactly once.
func MakeCopyOfValue(src *Value) Value {
	if src == nil {
		return MakeVoid()
	}
	v := *src

	switch src.Type {
	case TypeString:
		v.Str = copyStringBuffer(src.Str, src.MaxLength)

	case TypeRecord:
		v.Record = copyRecord(src.Record)

	case TypeArray:
		v.LowerBounds = append([]int(nil), src.LowerBounds...)
		v.UpperBounds = append([]int(nil), src.UpperBounds...)
		if src.Elems != nil {
			v.Elems = make([]Value, len(src.Elems))
			for i := range src.Elems {
				v.Elems[i] = MakeCopyOfValue(&src.Elems[i])
			}
		}

	case TypeSet:
		if src.SetValues != nil {
			v.SetValues = append(make([]int64, 0, len(src.SetValues)), src.SetValues...)
		}

	case TypeMemoryStream:
		if src.MStream != nil {
			v.MStream = &MStream{Buffer: append([]byte(nil), src.MStream.Buffer...)}
		}

	case TypeFile:
		v.File = nil
	}
	return v
}

func copyStringBuffer(src []byte, maxLength int) []byte {
	if src == nil {
		if maxLength > 0 {
			return make([]byte, 0, maxLength)
		}
		return []byte{}
	}
	capacity := len(src)
	if maxLength > capacity {
		capacity = maxLength
	}
	buf := make([]byte, len(src), capacity)
	copy(buf, src)
	return buf
}

func copyRecord(head *FieldValue) *FieldValue {
	var first, tail *FieldValue
	for f := head; f != nil; f = f.Next {
		cell := &FieldValue{Name: f.Name, Value: MakeCopyOfValue(&f.Value)}
		if tail == nil {
			first = cell
		} else {
			tail.Next = cell
		}
		tail = cell
	}
	return first
}
