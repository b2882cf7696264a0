// Package syntax defines the syntax-tree contract consumed by the suggestion
// engine. The node set is closed: completers dispatch on the concrete types
// below and treat anything they do not recognize as opaque. The production
// shell supplies its own parser; the LineParser in this package is a compact
// reference implementation covering the command-line subset the engine and
// its tests need.
package syntax

// Span is a half-open byte range [Start, End) into the parsed line.
type Span struct {
	Start int
	End   int
}

// Contains reports whether pos falls inside the span, end inclusive, so a
// cursor sitting immediately after a node still belongs to it.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos <= s.End
}

// Node is implemented by every syntax-tree node.
type Node interface {
	Span() Span
	// Children returns direct child nodes in source order.
	Children() []Node
}

// ScriptBlock is the root of a parsed line and the body of { } literals.
type ScriptBlock struct {
	Pos        Span
	Params     []*Parameter
	Statements []Node
	Usings     []*UsingNamespace
}

// Pipeline is a sequence of commands connected with |.
type Pipeline struct {
	Pos      Span
	Elements []Node
}

// Command is a single command invocation with its arguments in source order.
// Args holds *CommandParameter entries for -Name tokens and expression nodes
// for positional arguments.
type Command struct {
	Pos          Span
	Name         string
	NamePos      Span
	CallOperator bool // invoked through & or .
	Args         []Node
}

// CommandParameter is a -Name token, optionally with a :-attached argument.
type CommandParameter struct {
	Pos      Span
	Name     string
	HasColon bool
	Argument Node // non-nil only for -Name:value
}

// StringLit is a bare word or quoted string. Quote is 0 for bare words,
// '\'' or '"' otherwise.
type StringLit struct {
	Pos   Span
	Value string
	Quote byte
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Pos   Span
	Raw   string
	Value float64
	IsInt bool
	Int   int64
}

// VariableExpr is a $name reference; Name excludes the sigil.
type VariableExpr struct {
	Pos  Span
	Name string
}

// MemberExpr is target.member or target::member (Static true).
// Member is usually a bare *StringLit; a wildcard pattern is allowed.
type MemberExpr struct {
	Pos    Span
	Target Node
	Member Node
	Static bool
}

// IndexExpr is target[index].
type IndexExpr struct {
	Pos    Span
	Target Node
	Index  Node
}

// TypeLit is a [TypeName] literal.
type TypeLit struct {
	Pos  Span
	Type *TypeName
}

// TypeName names a type, possibly generic.
type TypeName struct {
	Pos         Span
	Name        string
	GenericArgs []*TypeName
}

// ArrayLit is @( ... ) or a bare comma list.
type ArrayLit struct {
	Pos      Span
	Elements []Node
}

// HashEntry is one key = value pair of a hashtable literal.
type HashEntry struct {
	Pos   Span
	Key   Node
	Value Node
}

// HashtableLit is @{ k = v; ... }.
type HashtableLit struct {
	Pos     Span
	Entries []*HashEntry
}

// ParenExpr is ( inner ).
type ParenExpr struct {
	Pos   Span
	Inner Node
}

// SubExpr is $( statements ).
type SubExpr struct {
	Pos   Span
	Block *ScriptBlock
}

// UnaryExpr applies a prefix operator.
type UnaryExpr struct {
	Pos     Span
	Op      string
	Operand Node
}

// BinaryExpr applies an infix operator.
type BinaryExpr struct {
	Pos Span
	Op  string
	LHS Node
	RHS Node
}

// AssignmentStmt is target op value, where op is =, +=, etc.
type AssignmentStmt struct {
	Pos    Span
	Target Node
	Op     string
	Value  Node
}

// ScriptBlockExpr is a { } literal used as an expression.
type ScriptBlockExpr struct {
	Pos  Span
	Body *ScriptBlock
}

// ConvertExpr is [Type] applied to an expression.
type ConvertExpr struct {
	Pos     Span
	Type    *TypeName
	Operand Node
}

// FunctionDef declares a function.
type FunctionDef struct {
	Pos    Span
	Name   string
	Params []*Parameter
	Body   *ScriptBlock
}

// ClassDef declares a shell class.
type ClassDef struct {
	Pos        Span
	Name       string
	BaseTypes  []string
	Properties []*PropertyDef
	Methods    []*MethodDef
}

// PropertyDef is a property declaration inside a class.
type PropertyDef struct {
	Pos      Span
	Name     string
	TypeName string
	Static   bool
	Hidden   bool
}

// MethodDef is a method declaration inside a class.
type MethodDef struct {
	Pos        Span
	Name       string
	ReturnType string
	Static     bool
	Hidden     bool
	Params     []*Parameter
}

// Parameter is a declared parameter of a script block or function.
type Parameter struct {
	Pos          Span
	Name         string
	Type         *TypeName
	Attributes   []*Attribute
	DefaultValue Node
}

// Attribute is [Name(args)] attached to a parameter.
type Attribute struct {
	Pos        Span
	Name       string
	Positional []Node
	Named      map[string]Node
}

// UsingNamespace is a `using namespace X` directive.
type UsingNamespace struct {
	Pos       Span
	Namespace string
}

// ErrorExpr marks an unparsable region.
type ErrorExpr struct {
	Pos Span
}

func (n *ScriptBlock) Span() Span      { return n.Pos }
func (n *Pipeline) Span() Span         { return n.Pos }
func (n *Command) Span() Span          { return n.Pos }
func (n *CommandParameter) Span() Span { return n.Pos }
func (n *StringLit) Span() Span        { return n.Pos }
func (n *NumberLit) Span() Span        { return n.Pos }
func (n *VariableExpr) Span() Span     { return n.Pos }
func (n *MemberExpr) Span() Span       { return n.Pos }
func (n *IndexExpr) Span() Span        { return n.Pos }
func (n *TypeLit) Span() Span          { return n.Pos }
func (n *TypeName) Span() Span         { return n.Pos }
func (n *ArrayLit) Span() Span         { return n.Pos }
func (n *HashEntry) Span() Span        { return n.Pos }
func (n *HashtableLit) Span() Span     { return n.Pos }
func (n *ParenExpr) Span() Span        { return n.Pos }
func (n *SubExpr) Span() Span          { return n.Pos }
func (n *UnaryExpr) Span() Span        { return n.Pos }
func (n *BinaryExpr) Span() Span       { return n.Pos }
func (n *AssignmentStmt) Span() Span   { return n.Pos }
func (n *ScriptBlockExpr) Span() Span  { return n.Pos }
func (n *ConvertExpr) Span() Span      { return n.Pos }
func (n *FunctionDef) Span() Span      { return n.Pos }
func (n *ClassDef) Span() Span         { return n.Pos }
func (n *PropertyDef) Span() Span      { return n.Pos }
func (n *MethodDef) Span() Span        { return n.Pos }
func (n *Parameter) Span() Span        { return n.Pos }
func (n *Attribute) Span() Span        { return n.Pos }
func (n *UsingNamespace) Span() Span   { return n.Pos }
func (n *ErrorExpr) Span() Span        { return n.Pos }

func (n *ScriptBlock) Children() []Node {
	var out []Node
	for _, u := range n.Usings {
		out = append(out, u)
	}
	for _, p := range n.Params {
		out = append(out, p)
	}
	out = append(out, n.Statements...)
	return out
}

func (n *Pipeline) Children() []Node { return n.Elements }

func (n *Command) Children() []Node { return n.Args }

func (n *CommandParameter) Children() []Node {
	if n.Argument != nil {
		return []Node{n.Argument}
	}
	return nil
}

func (n *StringLit) Children() []Node    { return nil }
func (n *NumberLit) Children() []Node    { return nil }
func (n *VariableExpr) Children() []Node { return nil }

func (n *MemberExpr) Children() []Node {
	out := []Node{n.Target}
	if n.Member != nil {
		out = append(out, n.Member)
	}
	return out
}

func (n *IndexExpr) Children() []Node {
	out := []Node{n.Target}
	if n.Index != nil {
		out = append(out, n.Index)
	}
	return out
}

func (n *TypeLit) Children() []Node { return []Node{n.Type} }

func (n *TypeName) Children() []Node {
	var out []Node
	for _, g := range n.GenericArgs {
		out = append(out, g)
	}
	return out
}

func (n *ArrayLit) Children() []Node { return n.Elements }

func (n *HashEntry) Children() []Node {
	out := []Node{n.Key}
	if n.Value != nil {
		out = append(out, n.Value)
	}
	return out
}

func (n *HashtableLit) Children() []Node {
	var out []Node
	for _, e := range n.Entries {
		out = append(out, e)
	}
	return out
}

func (n *ParenExpr) Children() []Node { return []Node{n.Inner} }
func (n *SubExpr) Children() []Node   { return []Node{n.Block} }
func (n *UnaryExpr) Children() []Node { return []Node{n.Operand} }
func (n *BinaryExpr) Children() []Node {
	return []Node{n.LHS, n.RHS}
}

func (n *AssignmentStmt) Children() []Node {
	out := []Node{n.Target}
	if n.Value != nil {
		out = append(out, n.Value)
	}
	return out
}

func (n *ScriptBlockExpr) Children() []Node { return []Node{n.Body} }

func (n *ConvertExpr) Children() []Node {
	return []Node{n.Type, n.Operand}
}

func (n *FunctionDef) Children() []Node {
	var out []Node
	for _, p := range n.Params {
		out = append(out, p)
	}
	out = append(out, n.Body)
	return out
}

func (n *ClassDef) Children() []Node {
	var out []Node
	for _, p := range n.Properties {
		out = append(out, p)
	}
	for _, m := range n.Methods {
		out = append(out, m)
	}
	return out
}

func (n *PropertyDef) Children() []Node { return nil }

func (n *MethodDef) Children() []Node {
	var out []Node
	for _, p := range n.Params {
		out = append(out, p)
	}
	return out
}

func (n *Parameter) Children() []Node {
	var out []Node
	for _, a := range n.Attributes {
		out = append(out, a)
	}
	if n.Type != nil {
		out = append(out, n.Type)
	}
	if n.DefaultValue != nil {
		out = append(out, n.DefaultValue)
	}
	return out
}

func (n *Attribute) Children() []Node {
	var out []Node
	out = append(out, n.Positional...)
	for _, v := range n.Named {
		out = append(out, v)
	}
	return out
}

func (n *UsingNamespace) Children() []Node { return nil }
func (n *ErrorExpr) Children() []Node      { return nil }

// Walk visits root and every descendant in pre-order. Returning false from
// fn prunes the subtree below the current node.
func Walk(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.Children() {
		if child != nil {
			Walk(child, fn)
		}
	}
}

// EnclosingNodes returns every node whose span contains the cursor,
// innermost first (so the last element is the outermost enclosing node).
func EnclosingNodes(root Node, cursor int) []Node {
	var chain []Node
	Walk(root, func(n Node) bool {
		if !n.Span().Contains(cursor) {
			return false
		}
		chain = append(chain, n)
		return true
	})
	// chain was collected outermost first; reverse in place
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// StringValue returns the literal text of bare/quoted string nodes, or ""
// for anything else.
func StringValue(n Node) string {
	if s, ok := n.(*StringLit); ok {
		return s.Value
	}
	return ""
}
