// Package lua implements a small recursive-descent parser for the subset of
// Lua 5.3 scripts run inside the sandboxed authentication pipeline. It plays
// the role the design calls an "assumed third-party Lua grammar parser": the
// rest of the core only depends on the Node/Range/Loc contract below, so a
// different grammar implementation can be swapped in without touching any
// other package.
package lua

// Position is a line/column location, both 1-indexed to match editor
// conventions for display; offsets elsewhere in the package are 0-indexed
// byte positions into the source text.
type Position struct {
	Line   int
	Column int
}

// Loc is the start/end source position of a node, mirroring the `loc` field
// third-party Lua parsers (e.g. luaparse) attach to every node.
type Loc struct {
	Start Position
	End   Position
}

// Range is the [startOffset, endOffset) byte range of a node.
type Range struct {
	Start int
	End   int
}

// Node is implemented by every AST node. Kind returns the node's type
// discriminator string (e.g. "LocalStatement", "CallExpression"); downstream
// packages identify a node by the start offset of its Range.
type Node interface {
	Kind() string
	Range() Range
	Loc() Loc
}

type base struct {
	NodeRange Range
	NodeLoc   Loc
}

func (b base) Range() Range { return b.NodeRange }
func (b base) Loc() Loc     { return b.NodeLoc }

// Chunk is the root of a parsed script: a single top-level Block.
type Chunk struct {
	base
	Body *Block
}

func (*Chunk) Kind() string { return "Chunk" }

// Block is an ordered sequence of statements sharing no scope of their own;
// the statement that opens a new scope (function, for) owns it.
type Block struct {
	base
	Statements []Statement
}

func (*Block) Kind() string { return "Block" }

// Statement is implemented by every statement node.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression node.
type Expression interface {
	Node
	expressionNode()
}

type stmt struct{ base }

func (stmt) statementNode() {}

type expr struct{ base }

func (expr) expressionNode() {}

// ---- Statements -----------------------------------------------------------

// LocalStatement is `local a, b = e1, e2`.
type LocalStatement struct {
	stmt
	Names       []*Identifier
	Attributes  []string // Lua 5.4 <const>/<close>; kept for forward compat, unused under 5.3
	Init        []Expression
}

func (*LocalStatement) Kind() string { return "LocalStatement" }

// AssignmentStatement is `a, b.c = e1, e2`; targets may be identifiers,
// member expressions, or index expressions.
type AssignmentStatement struct {
	stmt
	Targets []Expression
	Init    []Expression
}

func (*AssignmentStatement) Kind() string { return "AssignmentStatement" }

// CallStatement wraps a call expression used as a statement, e.g. `print(x)`.
type CallStatement struct {
	stmt
	Call Expression
}

func (*CallStatement) Kind() string { return "CallStatement" }

// DoStatement is a bare `do ... end` block (no new scope per §4.7 simple
// block model, but still descended into).
type DoStatement struct {
	stmt
	Body *Block
}

func (*DoStatement) Kind() string { return "DoStatement" }

// WhileStatement is `while cond do ... end`.
type WhileStatement struct {
	stmt
	Condition Expression
	Body      *Block
}

func (*WhileStatement) Kind() string { return "WhileStatement" }

// RepeatStatement is `repeat ... until cond`; the condition can see locals
// declared in the body. The analyzer opens no scope for it: the body's
// locals are declared in the enclosing scope.
type RepeatStatement struct {
	stmt
	Body      *Block
	Condition Expression
}

func (*RepeatStatement) Kind() string { return "RepeatStatement" }

// IfClause is one `if`/`elseif` arm plus the final unconditioned `else`
// (Condition == nil).
type IfClause struct {
	Condition Expression
	Body      *Block
}

// IfStatement is `if c1 then ... elseif c2 then ... else ... end`.
type IfStatement struct {
	stmt
	Clauses []*IfClause
}

func (*IfStatement) Kind() string { return "IfStatement" }

// NumericForStatement is `for i = start, stop, step do ... end`.
type NumericForStatement struct {
	stmt
	Variable *Identifier
	Start    Expression
	Stop     Expression
	Step     Expression // nil if omitted
	Body     *Block
}

func (*NumericForStatement) Kind() string { return "NumericForStatement" }

// GenericForStatement is `for k, v in pairs(t) do ... end`.
type GenericForStatement struct {
	stmt
	Variables []*Identifier
	Iterators []Expression
	Body      *Block
}

func (*GenericForStatement) Kind() string { return "GenericForStatement" }

// FunctionDeclaration covers both `function f(...) ... end` and
// `local function f(...) ... end` (IsLocal) and method-style
// `function t:m(...) ... end` (IsMethod, implicit `self` parameter).
type FunctionDeclaration struct {
	stmt
	Identifier *Identifier // nil for anonymous function expressions (see FunctionExpression)
	IsLocal    bool
	IsMethod   bool
	Parameters []*Identifier
	IsVararg   bool
	Body       *Block
}

func (*FunctionDeclaration) Kind() string { return "FunctionDeclaration" }

// ReturnStatement is `return e1, e2` (Arguments may be empty).
type ReturnStatement struct {
	stmt
	Arguments []Expression
}

func (*ReturnStatement) Kind() string { return "ReturnStatement" }

// BreakStatement is `break`.
type BreakStatement struct{ stmt }

func (*BreakStatement) Kind() string { return "BreakStatement" }

// ---- Expressions ------------------------------------------------------------

// Identifier is a bare name reference, `x`.
type Identifier struct {
	expr
	Name string
}

func (*Identifier) Kind() string { return "Identifier" }

// VarargLiteral is `...`.
type VarargLiteral struct{ expr }

func (*VarargLiteral) Kind() string { return "VarargLiteral" }

// NilLiteral is `nil`.
type NilLiteral struct{ expr }

func (*NilLiteral) Kind() string { return "NilLiteral" }

// BooleanLiteral is `true`/`false`.
type BooleanLiteral struct {
	expr
	Value bool
}

func (*BooleanLiteral) Kind() string { return "BooleanLiteral" }

// NumberLiteral is any numeric literal (integer or float).
type NumberLiteral struct {
	expr
	Value     float64
	IsInteger bool
	Raw       string
}

func (*NumberLiteral) Kind() string { return "NumberLiteral" }

// StringLiteral is any quoted or long-bracket string literal.
type StringLiteral struct {
	expr
	Value string
	Raw   string
}

func (*StringLiteral) Kind() string { return "StringLiteral" }

// FunctionExpression is an anonymous `function(...) ... end` used as a value.
type FunctionExpression struct {
	expr
	Parameters []*Identifier
	IsVararg   bool
	Body       *Block
}

func (*FunctionExpression) Kind() string { return "FunctionExpression" }

// MemberExpression is `a.b`; bracketed access `a[k]` is an IndexExpression.
type MemberExpression struct {
	expr
	Base     Expression
	Property *Identifier
}

func (*MemberExpression) Kind() string { return "MemberExpression" }

// IndexExpression is `a[b]`.
type IndexExpression struct {
	expr
	Base  Expression
	Index Expression
}

func (*IndexExpression) Kind() string { return "IndexExpression" }

// CallExpression is `f(args)` or, when Method != nil, `a:m(args)`.
type CallExpression struct {
	expr
	Base      Expression
	Method    *Identifier // non-nil for `a:m(...)`; Base is the receiver
	Arguments []Expression
}

func (*CallExpression) Kind() string { return "CallExpression" }

// BinaryExpression is `a OP b`.
type BinaryExpression struct {
	expr
	Operator string
	Left     Expression
	Right    Expression
}

func (*BinaryExpression) Kind() string { return "BinaryExpression" }

// LogicalExpression is `a and b` / `a or b`, kept distinct from
// BinaryExpression because its type rule differs (§4.6).
type LogicalExpression struct {
	expr
	Operator string
	Left     Expression
	Right    Expression
}

func (*LogicalExpression) Kind() string { return "LogicalExpression" }

// UnaryExpression is `OP a` (`not`, `-`, `#`, `~`).
type UnaryExpression struct {
	expr
	Operator string
	Argument Expression
}

func (*UnaryExpression) Kind() string { return "UnaryExpression" }

// TableField is one entry of a TableConstructor: `[k] = v`, `name = v`, or a
// bare positional `v` (Key == nil).
type TableField struct {
	Key   Expression // nil for positional entries
	Value Expression
}

// TableConstructor is `{ ... }`.
type TableConstructor struct {
	expr
	Fields []*TableField
}

func (*TableConstructor) Kind() string { return "TableConstructor" }

// ParenExpression is `(e)`, preserved so call-adjustment-to-one-value
// semantics can be recovered if ever needed; inference treats it as
// transparent.
type ParenExpression struct {
	expr
	Argument Expression
}

func (*ParenExpression) Kind() string { return "ParenExpression" }
