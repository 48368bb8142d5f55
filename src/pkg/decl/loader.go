// Package decl loads constant, type and variable declarations from YAML and
// parses the Pascal-style type and expression text they contain.
//
// A document has three optional mappings, applied in order:
//
//	consts:
//	  MaxLen: 10
//	  Greeting: 'hello'
//	  Last: {expr: "MaxLen - 1"}
//	types:
//	  TColor: {enum: [red, green, blue]}
//	  PNode: ^TNode
//	  TNode:
//	    record:
//	      val: integer
//	      next: PNode
//	  TName: string[MaxLen]
//	vars:
//	  head: PNode
//	  grid: array[1..3, 0..Last] of real
//	  count: {type: integer, init: "MaxLen * 2"}
//
// Mapping order is preserved, so a declaration may use anything declared
// above it.
package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	pscal "github.com/emkey1/pscal-sub005/src"
)

// ConstDecl is one constant declaration
type ConstDecl struct {
	Name     string
	Value    pscal.Value
	Expr     *pscal.Node // set instead of Value for {expr: ...}
	Position *pscal.SourcePosition
}

// TypeDecl is one named type
type TypeDecl struct {
	Name     string
	Type     *pscal.Node
	Position *pscal.SourcePosition
}

// VarDecl is one variable, optionally initialised
type VarDecl struct {
	Name     string
	Type     *pscal.Node
	Init     *pscal.Node
	Position *pscal.SourcePosition
}

// Document is a parsed declaration file
type Document struct {
	Filename string
	Consts   []ConstDecl
	Types    []TypeDecl
	Vars     []VarDecl
}

// LoadFile parses a declaration file
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading declarations: %w", err)
	}
	return Parse(data, path)
}

// Parse parses a YAML declaration document
func Parse(data []byte, filename string) (*Document, error) {
	doc := &Document{Filename: filename}

	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, fmt.Errorf("%s: %w", displayName(filename), err)
	}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, doc.errorAt(top, "top level must be a mapping of consts, types and vars")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, body := top.Content[i], top.Content[i+1]
		if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			return nil, doc.errorAt(body, "%s must be a mapping", key.Value)
		}
		var err error
		switch strings.ToLower(key.Value) {
		case "consts", "const":
			err = doc.parseConsts(body)
		case "types", "type":
			err = doc.parseTypes(body)
		case "vars", "var":
			err = doc.parseVars(body)
		default:
			err = doc.errorAt(key, "unknown section %q", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func displayName(filename string) string {
	if filename == "" {
		return "<input>"
	}
	return filename
}

func (doc *Document) position(n *yaml.Node) *pscal.SourcePosition {
	return &pscal.SourcePosition{Line: n.Line, Column: n.Column, Filename: doc.Filename}
}

func (doc *Document) errorAt(n *yaml.Node, format string, args ...interface{}) error {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Position: doc.position(n)}
}

func (doc *Document) parseConsts(body *yaml.Node) error {
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		c := ConstDecl{Name: key.Value, Position: doc.position(key)}

		switch val.Kind {
		case yaml.ScalarNode:
			v, err := doc.scalarValue(val)
			if err != nil {
				return err
			}
			c.Value = v
		case yaml.MappingNode:
			exprText, ok := mappingScalar(val, "expr")
			if !ok {
				return doc.errorAt(val, "constant %s: mapping form needs an expr key", key.Value)
			}
			expr, err := ParseExprAt(exprText, doc.position(val))
			if err != nil {
				return err
			}
			c.Expr = expr
		default:
			return doc.errorAt(val, "constant %s must be a scalar or {expr: ...}", key.Value)
		}
		doc.Consts = append(doc.Consts, c)
	}
	return nil
}

// scalarValue converts a YAML scalar to a value by its resolved tag
func (doc *Document) scalarValue(n *yaml.Node) (pscal.Value, error) {
	switch n.Tag {
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return pscal.Value{}, doc.errorAt(n, "integer %s out of range", n.Value)
		}
		return pscal.MakeInt(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return pscal.Value{}, doc.errorAt(n, "invalid real %s", n.Value)
		}
		return pscal.MakeReal(f), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return pscal.Value{}, doc.errorAt(n, "invalid boolean %s", n.Value)
		}
		return pscal.MakeBoolean(b), nil
	}
	s := n.Value
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return pscal.MakeString(s), nil
}

func mappingScalar(n *yaml.Node, key string) (string, bool) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, key) && n.Content[i+1].Kind == yaml.ScalarNode {
			return n.Content[i+1].Value, true
		}
	}
	return "", false
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, key) {
			return n.Content[i+1]
		}
	}
	return nil
}

func (doc *Document) parseTypes(body *yaml.Node) error {
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		def, err := doc.typeNode(val, key.Value)
		if err != nil {
			return err
		}
		doc.Types = append(doc.Types, TypeDecl{Name: key.Value, Type: def, Position: doc.position(key)})
	}
	return nil
}

func (doc *Document) parseVars(body *yaml.Node) error {
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		v := VarDecl{Name: key.Value, Position: doc.position(key)}

		typeSpec := val
		if val.Kind == yaml.MappingNode {
			if t := mappingValue(val, "type"); t != nil {
				typeSpec = t
				if initText, ok := mappingScalar(val, "init"); ok {
					init, err := ParseExprAt(initText, doc.position(val))
					if err != nil {
						return err
					}
					v.Init = init
				}
			}
		}
		def, err := doc.typeNode(typeSpec, "")
		if err != nil {
			return err
		}
		v.Type = def
		doc.Vars = append(doc.Vars, v)
	}
	return nil
}

// typeNode builds a type definition from a scalar type expression or a
// {record: ...} / {enum: [...]} mapping
func (doc *Document) typeNode(n *yaml.Node, name string) (*pscal.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return ParseTypeAt(n.Value, doc.position(n))

	case yaml.MappingNode:
		if fields := mappingValue(n, "record"); fields != nil {
			return doc.recordNode(fields)
		}
		if members := mappingValue(n, "enum"); members != nil {
			if members.Kind != yaml.SequenceNode || len(members.Content) == 0 {
				return nil, doc.errorAt(members, "enum needs a non-empty list of members")
			}
			names := make([]string, 0, len(members.Content))
			for _, m := range members.Content {
				names = append(names, m.Value)
			}
			def := pscal.EnumType(name, names...)
			def.Position = doc.position(n)
			return def, nil
		}
		return nil, doc.errorAt(n, "type mapping needs a record or enum key")
	}
	return nil, doc.errorAt(n, "a type must be a string or a mapping")
}

func (doc *Document) recordNode(fields *yaml.Node) (*pscal.Node, error) {
	if fields.Kind != yaml.MappingNode {
		return nil, doc.errorAt(fields, "record fields must be a mapping of name: type")
	}
	var groups []pscal.Field
	for i := 0; i+1 < len(fields.Content); i += 2 {
		key, val := fields.Content[i], fields.Content[i+1]
		def, err := doc.typeNode(val, "")
		if err != nil {
			return nil, err
		}
		groups = append(groups, pscal.Field{Names: []string{key.Value}, TypeDef: def})
	}
	rec := pscal.RecordType(groups...)
	rec.Position = doc.position(fields)
	return rec, nil
}

// Apply declares everything in the document into chain: constants, then
// types, then variables with their initial values
func (doc *Document) Apply(rt *pscal.Runtime, chain *pscal.ScopeChain) error {
	for _, c := range doc.Consts {
		value := c.Value
		if c.Expr != nil {
			v, err := rt.Eval(chain, c.Expr)
			if err != nil {
				return fmt.Errorf("constant %s: %w", c.Name, err)
			}
			value = v
		}
		_, err := rt.DeclareConst(chain, c.Name, &value)
		pscal.FreeValue(&value)
		if err != nil {
			return err
		}
	}

	for _, t := range doc.Types {
		rt.DeclareType(chain, t.Name, t.Type)
	}

	for _, v := range doc.Vars {
		if _, err := rt.DeclareVar(chain, v.Name, v.Type); err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		if v.Init == nil {
			continue
		}
		init, err := rt.Eval(chain, v.Init)
		if err != nil {
			return fmt.Errorf("initialising %s: %w", v.Name, err)
		}
		target := pscal.Ident(v.Name)
		target.Position = v.Position
		err = rt.AssignValueToLValue(chain, target, &init)
		pscal.FreeValue(&init)
		if err != nil {
			return fmt.Errorf("initialising %s: %w", v.Name, err)
		}
	}
	return nil
}

// Load parses a declaration file and applies it
func Load(path string, rt *pscal.Runtime, chain *pscal.ScopeChain) (*Document, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Apply(rt, chain); err != nil {
		return doc, err
	}
	return doc, nil
}
