package pscal

// New allocates a default value of ptrVar's pointee type on the heap and
// stores its address into ptrVar. Whatever ptrVar pointed at before is left
// alone; New never disposes.
func (rt *Runtime) New(chain *ScopeChain, ptrVar *Node) error {
	ref, err := rt.resolveTarget(chain, ptrVar, 0)
	if err != nil {
		return err
	}
	if ref.charIndex > 0 || !isPointerCell(ref) {
		return rt.errAt(ptrVar, ErrNotPointer, "new requires a pointer variable, %s is %s", ref.desc, ref.cell.Type)
	}
	if ref.isConst {
		return rt.errAt(ptrVar, ErrConstAssign, "cannot assign to constant %s", ref.desc)
	}

	base := ref.cell.BaseTypeNode
	if base == nil && ref.declDef != nil {
		base = pointeeOf(rt.resolveTypeNode(chain, ref.declDef))
	}
	pointeeType := rt.VarTypeOf(chain, base)
	if base == nil || pointeeType == TypeVoid || pointeeType == TypeUnknown {
		fallback := rt.config.DefaultPointee
		rt.logger.DebugCat(CatPointer, "No pointee type for %s; allocating %s", ref.desc, fallback)
		base = Ident(fallback)
		pointeeType = rt.VarTypeOf(chain, base)
		if pointeeType == TypeVoid || pointeeType == TypeUnknown {
			base = Ident("integer")
			pointeeType = TypeInteger
		}
	}

	pointee, err := rt.MakeValueForType(chain, pointeeType, base, nil)
	if err != nil {
		return withPosition(err, ptrVar.Position)
	}
	addr, err := rt.heap.Alloc(pointee, typeName(base, pointeeType))
	if err != nil {
		FreeValue(&pointee)
		return withPosition(err, ptrVar.Position)
	}

	ptr := MakePointer(addr, base)
	if err := rt.store(ref, &ptr, ptrVar); err != nil {
		rt.heap.Release(addr)
		return err
	}
	rt.logger.DebugCat(CatPointer, "new(%s) -> @%d (%s)", ref.desc, addr, pointeeType)
	return nil
}

// NewObj allocates a default value of the named type and returns a pointer to it
func (rt *Runtime) NewObj(chain *ScopeChain, typeName string) (Value, error) {
	def := chain.LookupType(typeName)
	if def == nil {
		if _, ok := BuiltinVarType(typeName); !ok {
			return Value{}, runtimeErrorf(ErrUndeclared, "unknown type %s", typeName)
		}
		def = Ident(typeName)
	}
	t := rt.VarTypeOf(chain, def)
	pointee, err := rt.MakeValueForType(chain, t, def, nil)
	if err != nil {
		return Value{}, err
	}
	addr, err := rt.heap.Alloc(pointee, typeName)
	if err != nil {
		FreeValue(&pointee)
		return Value{}, err
	}
	rt.logger.DebugCat(CatPointer, "newobj(%s) -> @%d", typeName, addr)
	return MakePointer(addr, def), nil
}

// Dispose releases the value ptrVar points at, nils ptrVar, and then nils
// every other pointer symbol in a live scope holding the same address.
// Disposing nil is a no-op.
func (rt *Runtime) Dispose(chain *ScopeChain, ptrVar *Node) error {
	ref, err := rt.resolveTarget(chain, ptrVar, 0)
	if err != nil {
		return err
	}
	if ref.charIndex > 0 || !isPointerCell(ref) {
		return rt.errAt(ptrVar, ErrNotPointer, "dispose requires a pointer variable, %s is %s", ref.desc, ref.cell.Type)
	}
	cell := ref.cell
	if cell.Type == TypeNil || cell.Ptr == 0 {
		rt.logger.DebugCat(CatPointer, "dispose(%s) on nil pointer ignored", ref.desc)
		return nil
	}
	if ref.isConst {
		return rt.errAt(ptrVar, ErrConstAssign, "cannot dispose through constant %s", ref.desc)
	}

	addr := cell.Ptr
	if _, ok := rt.heap.Get(addr); !ok {
		return rt.errAt(ptrVar, ErrDanglingPointer, "dispose(%s): @%d was already released", ref.desc, addr)
	}

	rt.heap.Release(addr)
	cell.Ptr = 0
	n := rt.nullifyAliases(chain, addr, cell)
	rt.logger.DebugCat(CatPointer, "dispose(%s) released @%d, %d alias(es) cleared", ref.desc, addr, n)
	return nil
}

// Deref returns the cell a pointer value refers to
func (rt *Runtime) Deref(ptr *Value) (*Value, error) {
	if ptr == nil || (ptr.Type != TypePointer && ptr.Type != TypeNil) {
		t := TypeVoid
		if ptr != nil {
			t = ptr.Type
		}
		return nil, runtimeErrorf(ErrNotPointer, "cannot dereference %s", t)
	}
	if ptr.IsNilPointer() {
		return nil, runtimeErrorf(ErrNilPointer, "nil pointer dereference")
	}
	target, ok := rt.heap.Get(ptr.Ptr)
	if !ok {
		return nil, runtimeErrorf(ErrDanglingPointer, "@%d has been disposed", ptr.Ptr)
	}
	return target, nil
}

func isPointerCell(ref *cellRef) bool {
	switch ref.cell.Type {
	case TypePointer:
		return true
	case TypeNil:
		return ref.declType == TypePointer
	}
	return false
}

// nullifyAliases clears every other top-level pointer symbol holding addr.
// With SweepNestedPointers it also walks record fields, array elements and
// live heap cells.
func (rt *Runtime) nullifyAliases(chain *ScopeChain, addr Address, disposed *Value) int {
	count := 0
	for _, scope := range chain.Live() {
		for _, sym := range scope.Symbols() {
			v := sym.Value
			if v == nil || v == disposed {
				continue
			}
			if v.Type == TypePointer && v.Ptr == addr {
				v.Ptr = 0
				count++
				rt.logger.DebugCat(CatPointer, "Cleared alias %s of @%d", sym.Name, addr)
				continue
			}
			if rt.config.SweepNestedPointers {
				count += clearNestedPointers(v, addr)
			}
		}
	}
	if rt.config.SweepNestedPointers {
		for _, a := range rt.heap.Addresses() {
			if cell, ok := rt.heap.Get(a); ok {
				count += clearNestedPointers(cell, addr)
			}
		}
	}
	return count
}

// clearNestedPointers nils pointers to addr anywhere inside v, v included
func clearNestedPointers(v *Value, addr Address) int {
	switch v.Type {
	case TypePointer:
		if v.Ptr == addr {
			v.Ptr = 0
			return 1
		}
	case TypeRecord:
		n := 0
		for f := v.Record; f != nil; f = f.Next {
			n += clearNestedPointers(&f.Value, addr)
		}
		return n
	case TypeArray:
		n := 0
		for i := range v.Elems {
			n += clearNestedPointers(&v.Elems[i], addr)
		}
		return n
	}
	return 0
}
