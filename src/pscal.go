package pscal

import "strings"

// maxTypeDepth bounds recursion through type definitions so a record that
// contains itself degrades instead of overflowing the stack
const maxTypeDepth = 64

// Runtime is the value engine: it owns the heap, the configuration and the
// logger. Scopes are passed explicitly to every operation that resolves names.
type Runtime struct {
	config *Config
	logger *Logger
	heap   *Heap

	// Scopes is the chain used by the shell and other single-program callers
	Scopes *ScopeChain

	// IndexEvaluator, when set, evaluates index expressions in place of Eval
	IndexEvaluator func(chain *ScopeChain, node *Node) (Value, error)
}

// New creates a runtime with a fresh heap and an empty scope chain
func New(config *Config) *Runtime {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.newConfiguredLogger()
	return &Runtime{
		config: config,
		logger: logger,
		heap:   NewHeap(logger),
		Scopes: NewScopeChain(),
	}
}

// NewWithLogger creates a runtime that reports through an existing logger
func NewWithLogger(config *Config, logger *Logger) *Runtime {
	rt := New(config)
	if logger != nil {
		rt.logger = logger
		rt.heap.logger = logger
	}
	return rt
}

// Config returns the runtime configuration
func (rt *Runtime) Config() *Config { return rt.config }

// Logger returns the runtime logger
func (rt *Runtime) Logger() *Logger { return rt.logger }

// Heap returns the heap holding every value allocated by New
func (rt *Runtime) Heap() *Heap { return rt.heap }

// DeclareType binds a type name in the chain's type table
func (rt *Runtime) DeclareType(chain *ScopeChain, name string, def *Node) {
	if def != nil && def.Kind == NodeEnumType && def.Token == "" {
		def.Token = name
	}
	chain.Types.Define(name, def)
	rt.logger.DebugCat(CatType, "Defined type %s (%s)", name, rt.VarTypeOf(chain, def))
}

// DeclareVar creates a variable in the current scope holding the default
// value of its type
func (rt *Runtime) DeclareVar(chain *ScopeChain, name string, typeDef *Node) (*Symbol, error) {
	t := rt.VarTypeOf(chain, typeDef)
	v, err := rt.MakeValueForType(chain, t, typeDef, nil)
	if err != nil {
		return nil, err
	}
	sym := &Symbol{Name: name, Type: t, TypeDef: typeDef, Value: &v}
	if typeDef != nil {
		sym.Position = typeDef.Position
	}
	if existing, ok := chain.Current().Insert(sym); !ok {
		FreeValue(&v)
		rt.logger.WarnCat(CatVariable, "Duplicate declaration of %s ignored", name)
		return existing, nil
	}
	rt.logger.DebugCat(CatVariable, "Declared %s: %s", name, t)
	return sym, nil
}

// DeclareConst creates a constant in the current scope holding a copy of value
func (rt *Runtime) DeclareConst(chain *ScopeChain, name string, value *Value) (*Symbol, error) {
	v := MakeCopyOfValue(value)
	sym := &Symbol{Name: name, Type: v.Type, IsConst: true, Value: &v}
	if existing, ok := chain.Current().Insert(sym); !ok {
		FreeValue(&v)
		if existing.IsConst {
			return existing, runtimeErrorf(ErrConstAssign, "constant %s already declared", name)
		}
		return existing, runtimeErrorf(ErrConstAssign, "%s already declared as a variable", name)
	}
	rt.logger.DebugCat(CatVariable, "Declared const %s = %s", name, rt.Format(&v))
	return sym, nil
}

// resolveTypeNode follows type references and named types to the node that
// actually describes the type. Fixed strings and built-in names resolve to themselves.
func (rt *Runtime) resolveTypeNode(chain *ScopeChain, def *Node) *Node {
	for depth := 0; def != nil && depth < maxTypeDepth; depth++ {
		switch def.Kind {
		case NodeTypeReference:
			if def.Right != nil {
				def = def.Right
				continue
			}
			next := chain.LookupType(def.Token)
			if next == nil {
				if vt, builtin := BuiltinVarType(def.Token); builtin {
					return &Node{Kind: NodeVariable, Token: def.Token, VarType: vt, Position: def.Position}
				}
				return def
			}
			def = next
		case NodeVariable:
			if _, builtin := BuiltinVarType(def.Token); builtin {
				return def
			}
			next := chain.LookupType(def.Token)
			if next == nil || next == def {
				return def
			}
			def = next
		default:
			return def
		}
	}
	return def
}

// VarTypeOf maps a type-definition node to its discriminant
func (rt *Runtime) VarTypeOf(chain *ScopeChain, def *Node) VarType {
	def = rt.resolveTypeNode(chain, def)
	if def == nil {
		return TypeVoid
	}
	switch def.Kind {
	case NodeVariable:
		if t, ok := BuiltinVarType(def.Token); ok {
			return t
		}
	case NodeRecordType:
		return TypeRecord
	case NodeArrayType:
		return TypeArray
	case NodeEnumType:
		return TypeEnum
	case NodePointerType:
		return TypePointer
	case NodeSetType:
		return TypeSet
	case NodeSubrange:
		return rt.subrangeBaseType(chain, def)
	}
	if def.VarType != TypeUnknown {
		return def.VarType
	}
	return TypeVoid
}

// subrangeBaseType returns the ordinal type a subrange is drawn from
func (rt *Runtime) subrangeBaseType(chain *ScopeChain, def *Node) VarType {
	lo := def.Left
	if lo == nil {
		return TypeInteger
	}
	switch lo.Kind {
	case NodeString:
		if len(lo.Token) == 1 {
			return TypeChar
		}
	case NodeVariable:
		if _, _, ok := chain.Types.findEnumMember(lo.Token); ok {
			return TypeEnum
		}
	}
	return TypeInteger
}

// typeName is the name recorded for a heap cell
func typeName(def *Node, t VarType) string {
	if def != nil && def.Token != "" && (def.Kind == NodeVariable || def.Kind == NodeTypeReference || def.Kind == NodeEnumType) {
		return strings.ToLower(def.Token)
	}
	return strings.ToLower(t.String())
}
