package pscal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// newTestRuntime returns a runtime whose diagnostics are captured
func newTestRuntime(t *testing.T, config *Config) (*Runtime, *bytes.Buffer) {
	t.Helper()
	if config == nil {
		config = DefaultConfig()
	}
	var out, errOut bytes.Buffer
	rt := NewWithLogger(config, NewLoggerWithWriters(false, &out, &errOut))
	return rt, &errOut
}

func TestLeafConstructors(t *testing.T) {
	if v := MakeInt(-7); v.Type != TypeInteger || v.I != -7 {
		t.Errorf("MakeInt(-7) = %+v", v)
	}
	if v := MakeByte(200); v.Type != TypeByte || v.I != 200 || v.U != 200 {
		t.Errorf("MakeByte(200) = %+v", v)
	}
	if v := MakeReal(2.5); v.Type != TypeReal || v.Real.F64 != 2.5 || v.Real.F32 != 2.5 || v.Real.Ext != 2.5 {
		t.Errorf("MakeReal(2.5) precisions not in sync: %+v", v.Real)
	}
	if v := MakeChar('q'); v.Type != TypeChar || v.I != 'q' || v.MaxLength != 1 {
		t.Errorf("MakeChar('q') = %+v", v)
	}
	if v := MakeBoolean(true); v.I != 1 {
		t.Errorf("MakeBoolean(true).I = %d, want 1", v.I)
	}
	if v := MakeBoolean(false); v.I != 0 {
		t.Errorf("MakeBoolean(false).I = %d, want 0", v.I)
	}
	if v := MakeNil(); !v.IsNilPointer() {
		t.Error("MakeNil should be a nil pointer")
	}
	if v := MakeVoid(); v.Type != TypeVoid {
		t.Errorf("MakeVoid type = %s", v.Type)
	}
	if v := MakePointer(9, Ident("integer")); v.Ptr != 9 || v.BaseTypeNode == nil {
		t.Errorf("MakePointer = %+v", v)
	}
}

func TestMakeStringCopiesInput(t *testing.T) {
	src := []byte("abc")
	v := MakeStringBytes(src)
	src[0] = 'X'
	if string(v.Str) != "abc" {
		t.Errorf("string value aliases caller memory: got %q", v.Str)
	}

	empty := MakeStringBytes(nil)
	if empty.Str == nil || len(empty.Str) != 0 {
		t.Errorf("nil input should give an empty owned buffer, got %#v", empty.Str)
	}
}

func TestMakeFixedStringTruncates(t *testing.T) {
	v := MakeFixedString("abcdefgh", 4)
	if string(v.Str) != "abcd" {
		t.Errorf("got %q, want %q", v.Str, "abcd")
	}
	if cap(v.Str) != 4 || v.MaxLength != 4 {
		t.Errorf("capacity %d / MaxLength %d, want 4 / 4", cap(v.Str), v.MaxLength)
	}
}

func TestMakeRecordKeepsOrderAndDropsDuplicates(t *testing.T) {
	v := MakeRecord(
		FieldValue{Name: "b", Value: MakeInt(2)},
		FieldValue{Name: "a", Value: MakeString("x")},
		FieldValue{Name: "B", Value: MakeInt(99)},
	)
	var names []string
	for f := v.Record; f != nil; f = f.Next {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("field order = %v, want [b a]", names)
	}
	if f := findField(&v, "B"); f == nil || f.Value.I != 2 {
		t.Error("duplicate field should not replace the first declaration")
	}
}

func TestFileValueHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v := MakeFile(f, path)

	cp := MakeCopyOfValue(&v)
	if cp.File != nil {
		t.Error("copy of a file value must not share the OS handle")
	}
	if cp.Filename != path {
		t.Errorf("copy filename = %q, want %q", cp.Filename, path)
	}

	FreeValue(&v)
	if v.File != nil {
		t.Error("FreeValue should clear the handle")
	}
	if err := f.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("handle should already be closed, Close returned %v", err)
	}
	FreeValue(&cp)
}
