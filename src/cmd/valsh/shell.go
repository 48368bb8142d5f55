package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	pscal "github.com/emkey1/pscal-sub005/src"
	"github.com/emkey1/pscal-sub005/src/pkg/decl"
)

var errQuit = errors.New("quit")

// dumper prints the raw structure of a value; pointers print by content
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	SortKeys:                true,
	MaxDepth:                8,
}

// shell executes one command line at a time against a runtime
type shell struct {
	rt    *pscal.Runtime
	chain *pscal.ScopeChain
	out   io.Writer
	width int // 0 means no truncation
}

func newShell(rt *pscal.Runtime, out io.Writer) *shell {
	return &shell{rt: rt, chain: rt.Scopes, out: out}
}

const helpText = `Commands:
  var <name> : <type>        declare a variable (e.g. var p : ^TNode)
  type <name> = <type>       declare a type (e.g. type TName = string[20])
  vars                       list variables in the live scopes
  show <expr>                print the value of an expression
  dump <expr>                print the raw structure of a value
  set <lvalue> := <expr>     assign (plain = is accepted too)
  new <lvalue>               allocate a pointee for a pointer
  dispose <lvalue>           release a pointee and nil its aliases
  heap                       list live heap cells
  push [name]                open a local scope
  pop                        release the local scope
  help                       show this text
  quit                       leave
`

// execute runs one command. errQuit is returned for quit.
func (sh *shell) execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		fmt.Fprint(sh.out, helpText)
		return nil
	case "var":
		return sh.declareVar(rest)
	case "type":
		return sh.declareType(rest)
	case "vars":
		sh.listVars()
		return nil
	case "show":
		return sh.show(rest)
	case "dump":
		return sh.dump(rest)
	case "set":
		return sh.set(rest)
	case "new":
		target, err := sh.lvalue(rest)
		if err != nil {
			return err
		}
		return sh.rt.New(sh.chain, target)
	case "dispose":
		target, err := sh.lvalue(rest)
		if err != nil {
			return err
		}
		return sh.rt.Dispose(sh.chain, target)
	case "heap":
		sh.listHeap()
		return nil
	case "push":
		name := rest
		if name == "" {
			name = "local"
		}
		sh.chain.PushLocal(name)
		return nil
	case "pop":
		if sh.chain.Local == nil {
			return errors.New("no local scope to pop")
		}
		sh.chain.PopLocal()
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func (sh *shell) lvalue(src string) (*pscal.Node, error) {
	if src == "" {
		return nil, errors.New("missing variable reference")
	}
	return decl.ParseExpr(src)
}

func (sh *shell) declareVar(rest string) error {
	name, typeText, ok := strings.Cut(rest, ":")
	name, typeText = strings.TrimSpace(name), strings.TrimSpace(typeText)
	if !ok || name == "" || typeText == "" {
		return errors.New("usage: var <name> : <type>")
	}
	def, err := decl.ParseType(typeText)
	if err != nil {
		return err
	}
	_, err = sh.rt.DeclareVar(sh.chain, name, def)
	return err
}

func (sh *shell) declareType(rest string) error {
	name, typeText, ok := strings.Cut(rest, "=")
	name, typeText = strings.TrimSpace(name), strings.TrimSpace(typeText)
	if !ok || name == "" || typeText == "" {
		return errors.New("usage: type <name> = <type>")
	}
	def, err := decl.ParseType(typeText)
	if err != nil {
		return err
	}
	sh.rt.DeclareType(sh.chain, name, def)
	return nil
}

func (sh *shell) listVars() {
	for _, scope := range sh.chain.Live() {
		for _, sym := range scope.Symbols() {
			kind := "var"
			if sym.IsConst {
				kind = "const"
			}
			sh.println(fmt.Sprintf("%s %s.%s: %s = %s", kind, scope.Name, sym.Name, sym.Type, sh.rt.Format(sym.Value)))
		}
	}
}

func (sh *shell) show(src string) error {
	node, err := sh.lvalue(src)
	if err != nil {
		return err
	}
	v, err := sh.rt.Eval(sh.chain, node)
	if err != nil {
		return err
	}
	defer pscal.FreeValue(&v)
	sh.println(sh.rt.Format(&v))
	return nil
}

func (sh *shell) dump(src string) error {
	node, err := sh.lvalue(src)
	if err != nil {
		return err
	}
	v, err := sh.rt.Eval(sh.chain, node)
	if err != nil {
		return err
	}
	defer pscal.FreeValue(&v)
	dumper.Fdump(sh.out, v)
	return nil
}

func (sh *shell) set(rest string) error {
	lhs, rhs, ok := splitAssignment(rest)
	if !ok {
		return errors.New("usage: set <lvalue> := <expr>")
	}
	target, err := sh.lvalue(lhs)
	if err != nil {
		return err
	}
	expr, err := decl.ParseExpr(rhs)
	if err != nil {
		return err
	}
	v, err := sh.rt.Eval(sh.chain, expr)
	if err != nil {
		return err
	}
	defer pscal.FreeValue(&v)
	return sh.rt.AssignValueToLValue(sh.chain, target, &v)
}

// splitAssignment splits "lhs := rhs" or "lhs = rhs" at the first assignment
// operator outside brackets and quotes
func splitAssignment(s string) (string, string, bool) {
	depth := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case depth == 0 && c == ':' && i+1 < len(s) && s[i+1] == '=':
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:]), i > 0 && i+2 < len(s)
		case depth == 0 && c == '=':
			if i > 0 && strings.IndexByte("<>:", s[i-1]) >= 0 {
				continue
			}
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), i > 0 && i+1 < len(s)
		}
	}
	return "", "", false
}

func (sh *shell) listHeap() {
	heap := sh.rt.Heap()
	addrs := heap.Addresses()
	sh.println(fmt.Sprintf("%d live cell(s)", len(addrs)))
	for _, addr := range addrs {
		v, _ := heap.Get(addr)
		sh.println(fmt.Sprintf("  @%d %s = %s", addr, heap.TypeName(addr), pscal.Format(v)))
	}
}

// println writes one line, truncated to the terminal width when known
func (sh *shell) println(line string) {
	if sh.width > 4 && len(line) > sh.width {
		line = line[:sh.width-3] + "..."
	}
	fmt.Fprintln(sh.out, line)
}
