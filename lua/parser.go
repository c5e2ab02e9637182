package lua

import "fmt"

// ParseError is the structured failure §4.1 requires Document to record:
// message plus both a byte index and a line/column, and the range of the
// token that triggered it.
type ParseError struct {
	Message string
	Index   int
	Line    int
	Column  int
	Range   Range
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Line, e.Column)
}

// parser is a recursive-descent parser over a token stream produced by
// Lexer. It never panics on malformed input: on first failure it records a
// ParseError and every subsequent production returns a best-effort partial
// node, so the caller ends up with whatever prefix of the chunk parsed
// cleanly. Document (§4.1) is the one responsible for the single-retry
// recovery pass; this parser only needs to fail fast and predictably.
type parser struct {
	lex  *Lexer
	curr Token
	next *Token // one token of lookahead, lazily filled
	err  *ParseError
	src  []byte
}

// Parse parses src as a Lua chunk. It always returns a non-nil *Chunk (the
// partial tree parsed before the first error, if any) alongside the error.
func Parse(src []byte) (*Chunk, *ParseError) {
	p := &parser{lex: NewLexer(src), src: src}
	p.advance()
	start := p.curr.Range.Start
	startLoc := p.curr.Loc.Start
	body := p.parseBlock()
	end := p.lastEnd()
	chunk := &Chunk{
		base: base{NodeRange: Range{start, end}, NodeLoc: Loc{startLoc, p.lastLoc()}},
		Body: body,
	}
	return chunk, p.err
}

func (p *parser) lastEnd() int {
	return p.curr.Range.End
}

func (p *parser) lastLoc() Position { return p.curr.Loc.End }

func (p *parser) advance() {
	if p.next != nil {
		p.curr = *p.next
		p.next = nil
		return
	}
	p.curr = p.lex.Scan()
}

func (p *parser) peek() Token {
	if p.next == nil {
		t := p.lex.Scan()
		p.next = &t
	}
	return *p.next
}

func (p *parser) fail(msg string) {
	if p.err != nil {
		return // keep the first error; never cascade
	}
	p.err = &ParseError{
		Message: msg,
		Index:   p.curr.Range.Start,
		Line:    p.curr.Loc.Start.Line,
		Column:  p.curr.Loc.Start.Column,
		Range:   p.curr.Range,
	}
}

func (p *parser) atEOF() bool { return p.curr.Kind == TokenEOF || p.err != nil }

func (p *parser) isKeyword(kw string) bool {
	return p.curr.Kind == TokenKeyword && p.curr.Value == kw
}

func (p *parser) isSymbol(sym string) bool {
	return p.curr.Kind == TokenSymbol && p.curr.Value == sym
}

func (p *parser) expectSymbol(sym string) Token {
	if !p.isSymbol(sym) {
		p.fail(fmt.Sprintf("%s expected near %s", sym, tokenDescription(p.curr)))
		return p.curr
	}
	t := p.curr
	p.advance()
	return t
}

func (p *parser) expectKeyword(kw string) Token {
	if !p.isKeyword(kw) {
		p.fail(fmt.Sprintf("%s expected near %s", kw, tokenDescription(p.curr)))
		return p.curr
	}
	t := p.curr
	p.advance()
	return t
}

func (p *parser) expectName() *Identifier {
	if p.curr.Kind != TokenName {
		p.fail(fmt.Sprintf("<name> expected near %s", tokenDescription(p.curr)))
		return &Identifier{expr: expr{base{NodeRange: p.curr.Range, NodeLoc: p.curr.Loc}}, Name: ""}
	}
	t := p.curr
	p.advance()
	return &Identifier{expr: expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}, Name: t.Value}
}

// blockEnd reports whether curr closes the enclosing block.
func (p *parser) blockEnd() bool {
	if p.curr.Kind == TokenEOF {
		return true
	}
	if p.curr.Kind != TokenKeyword {
		return false
	}
	switch p.curr.Value {
	case "end", "else", "elseif", "until":
		return true
	}
	return false
}

func (p *parser) parseBlock() *Block {
	start := p.curr.Range.Start
	startLoc := p.curr.Loc.Start
	var stmts []Statement
	for !p.blockEnd() && !p.atEOF() {
		if p.isKeyword("return") {
			stmts = append(stmts, p.parseReturn())
			break
		}
		s := p.parseStatement()
		if s == nil {
			break
		}
		stmts = append(stmts, s)
	}
	end := start
	if len(stmts) > 0 {
		end = stmts[len(stmts)-1].Range().End
	} else {
		end = p.curr.Range.Start
	}
	return &Block{base: base{NodeRange: Range{start, end}, NodeLoc: Loc{startLoc, p.curr.Loc.Start}}, Statements: stmts}
}

func (p *parser) parseStatement() Statement {
	switch {
	case p.isSymbol(";"):
		p.advance()
		return p.parseStatement()
	case p.isKeyword("local"):
		return p.parseLocal()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("repeat"):
		return p.parseRepeat()
	case p.isKeyword("do"):
		return p.parseDo()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("function"):
		return p.parseFunctionStatement()
	case p.isKeyword("break"):
		t := p.curr
		p.advance()
		return &BreakStatement{stmt{base{NodeRange: t.Range, NodeLoc: t.Loc}}}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseLocal() Statement {
	startTok := p.curr
	p.advance() // local
	if p.isKeyword("function") {
		p.advance()
		name := p.expectName()
		return p.finishFunction(startTok, name, true, false)
	}
	var names []*Identifier
	names = append(names, p.expectName())
	for p.isSymbol(",") {
		p.advance()
		names = append(names, p.expectName())
	}
	var init []Expression
	if p.isSymbol("=") {
		p.advance()
		init = p.parseExpressionList()
	}
	end := startTok.Range.End
	if len(init) > 0 {
		end = init[len(init)-1].Range().End
	} else if len(names) > 0 {
		end = names[len(names)-1].Range().End
	}
	return &LocalStatement{
		stmt: stmt{base{NodeRange: Range{startTok.Range.Start, end}}},
		Names: names, Init: init,
	}
}

func (p *parser) parseIf() Statement {
	start := p.curr.Range.Start
	p.advance() // if
	var clauses []*IfClause
	cond := p.parseExpression()
	p.expectKeyword("then")
	body := p.parseBlock()
	clauses = append(clauses, &IfClause{Condition: cond, Body: body})
	for p.isKeyword("elseif") {
		p.advance()
		c := p.parseExpression()
		p.expectKeyword("then")
		b := p.parseBlock()
		clauses = append(clauses, &IfClause{Condition: c, Body: b})
	}
	if p.isKeyword("else") {
		p.advance()
		b := p.parseBlock()
		clauses = append(clauses, &IfClause{Condition: nil, Body: b})
	}
	end := p.curr.Range.End
	p.expectKeyword("end")
	return &IfStatement{stmt: stmt{base{NodeRange: Range{start, end}}}, Clauses: clauses}
}

func (p *parser) parseWhile() Statement {
	start := p.curr.Range.Start
	p.advance()
	cond := p.parseExpression()
	p.expectKeyword("do")
	body := p.parseBlock()
	end := p.curr.Range.End
	p.expectKeyword("end")
	return &WhileStatement{stmt: stmt{base{NodeRange: Range{start, end}}}, Condition: cond, Body: body}
}

func (p *parser) parseRepeat() Statement {
	start := p.curr.Range.Start
	p.advance()
	body := p.parseBlock()
	p.expectKeyword("until")
	cond := p.parseExpression()
	end := cond.Range().End
	return &RepeatStatement{stmt: stmt{base{NodeRange: Range{start, end}}}, Body: body, Condition: cond}
}

func (p *parser) parseDo() Statement {
	start := p.curr.Range.Start
	p.advance()
	body := p.parseBlock()
	end := p.curr.Range.End
	p.expectKeyword("end")
	return &DoStatement{stmt: stmt{base{NodeRange: Range{start, end}}}, Body: body}
}

func (p *parser) parseFor() Statement {
	start := p.curr.Range.Start
	p.advance()
	first := p.expectName()
	if p.isSymbol("=") {
		p.advance()
		from := p.parseExpression()
		p.expectSymbol(",")
		to := p.parseExpression()
		var step Expression
		if p.isSymbol(",") {
			p.advance()
			step = p.parseExpression()
		}
		p.expectKeyword("do")
		body := p.parseBlock()
		end := p.curr.Range.End
		p.expectKeyword("end")
		return &NumericForStatement{
			stmt: stmt{base{NodeRange: Range{start, end}}},
			Variable: first, Start: from, Stop: to, Step: step, Body: body,
		}
	}
	names := []*Identifier{first}
	for p.isSymbol(",") {
		p.advance()
		names = append(names, p.expectName())
	}
	p.expectKeyword("in")
	iters := p.parseExpressionList()
	p.expectKeyword("do")
	body := p.parseBlock()
	end := p.curr.Range.End
	p.expectKeyword("end")
	return &GenericForStatement{
		stmt: stmt{base{NodeRange: Range{start, end}}},
		Variables: names, Iterators: iters, Body: body,
	}
}

func (p *parser) parseFunctionStatement() Statement {
	start := p.curr
	p.advance() // function
	name := p.expectName()
	isMethod := false
	var dotted Expression = name
	for p.isSymbol(".") {
		p.advance()
		prop := p.expectName()
		dotted = &MemberExpression{expr: expr{base{NodeRange: Range{dotted.Range().Start, prop.Range().End}}}, Base: dotted, Property: prop}
	}
	if p.isSymbol(":") {
		p.advance()
		prop := p.expectName()
		dotted = &MemberExpression{expr: expr{base{NodeRange: Range{dotted.Range().Start, prop.Range().End}}}, Base: dotted, Property: prop}
		isMethod = true
	}
	decl := p.finishFunction(start, nil, false, isMethod)
	decl.Identifier = identifierFromTarget(dotted)
	return decl
}

// identifierFromTarget flattens a dotted function name target into a single
// synthetic Identifier carrying the dotted display name, so declaration
// collection has a stable name to declare even for `function a.b.c()`.
func identifierFromTarget(e Expression) *Identifier {
	switch n := e.(type) {
	case *Identifier:
		return n
	case *MemberExpression:
		baseName := identifierFromTarget(n.Base)
		name := n.Property.Name
		if baseName != nil {
			name = baseName.Name + "." + n.Property.Name
		}
		return &Identifier{expr: expr{base{NodeRange: e.Range(), NodeLoc: e.Loc()}}, Name: name}
	}
	return nil
}

func (p *parser) finishFunction(start Token, name *Identifier, isLocal, isMethod bool) *FunctionDeclaration {
	p.expectSymbol("(")
	params, vararg := p.parseParameterList(isMethod)
	p.expectSymbol(")")
	body := p.parseBlock()
	end := p.curr.Range.End
	p.expectKeyword("end")
	return &FunctionDeclaration{
		stmt:       stmt{base{NodeRange: Range{start.Range.Start, end}}},
		Identifier: name,
		IsLocal:    isLocal,
		IsMethod:   isMethod,
		Parameters: params,
		IsVararg:   vararg,
		Body:       body,
	}
}

func (p *parser) parseParameterList(isMethod bool) ([]*Identifier, bool) {
	var params []*Identifier
	if isMethod {
		params = append(params, &Identifier{Name: "self"})
	}
	vararg := false
	if p.isSymbol(")") {
		return params, vararg
	}
	for {
		if p.isSymbol("...") {
			p.advance()
			vararg = true
			break
		}
		params = append(params, p.expectName())
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return params, vararg
}

func (p *parser) parseReturn() Statement {
	start := p.curr.Range
	p.advance()
	var args []Expression
	if !p.blockEnd() && !p.isSymbol(";") {
		args = p.parseExpressionList()
	}
	end := start.End
	if len(args) > 0 {
		end = args[len(args)-1].Range().End
	}
	if p.isSymbol(";") {
		end = p.curr.Range.End
		p.advance()
	}
	return &ReturnStatement{stmt: stmt{base{NodeRange: Range{start.Start, end}}}, Arguments: args}
}

// parseExpressionStatement handles both call statements and assignments,
// which share the `prefixexpr` grammar production up to the first `=` or
// statement terminator.
func (p *parser) parseExpressionStatement() Statement {
	first := p.parseSuffixedExpression()
	if p.isSymbol("=") || p.isSymbol(",") {
		targets := []Expression{first}
		for p.isSymbol(",") {
			p.advance()
			targets = append(targets, p.parseSuffixedExpression())
		}
		p.expectSymbol("=")
		init := p.parseExpressionList()
		end := first.Range().Start
		if len(init) > 0 {
			end = init[len(init)-1].Range().End
		}
		return &AssignmentStatement{stmt: stmt{base{NodeRange: Range{targets[0].Range().Start, end}}}, Targets: targets, Init: init}
	}
	if _, ok := first.(*CallExpression); !ok {
		p.fail(fmt.Sprintf("syntax error near %s", tokenDescription(p.curr)))
	}
	return &CallStatement{stmt: stmt{base{NodeRange: first.Range()}}, Call: first}
}

func (p *parser) parseExpressionList() []Expression {
	var list []Expression
	list = append(list, p.parseExpression())
	for p.isSymbol(",") {
		p.advance()
		list = append(list, p.parseExpression())
	}
	return list
}

// Operator precedence, lowest to highest (Lua 5.3 manual §3.4.8).
var binaryPrecedence = map[string][2]int{
	"or": {1, 1}, "and": {2, 2},
	"<": {3, 3}, ">": {3, 3}, "<=": {3, 3}, ">=": {3, 3}, "~=": {3, 3}, "==": {3, 3},
	"|": {4, 4}, "~": {5, 5}, "&": {6, 6},
	"<<": {7, 7}, ">>": {7, 7},
	"..": {9, 8}, // right-associative
	"+": {10, 10}, "-": {10, 10},
	"*": {11, 11}, "/": {11, 11}, "//": {11, 11}, "%": {11, 11},
	"^": {14, 13}, // right-associative
}

const unaryPrecedence = 12

func (p *parser) parseExpression() Expression { return p.parseBinary(0) }

func (p *parser) parseBinary(limit int) Expression {
	left := p.parseUnary()
	for {
		op := p.currentOperator()
		if op == "" {
			break
		}
		prec, ok := binaryPrecedence[op]
		if !ok || prec[0] <= limit {
			break
		}
		p.advance()
		right := p.parseBinary(prec[1])
		r := Range{left.Range().Start, right.Range().End}
		if op == "and" || op == "or" {
			left = &LogicalExpression{expr: expr{base{NodeRange: r}}, Operator: op, Left: left, Right: right}
		} else {
			left = &BinaryExpression{expr: expr{base{NodeRange: r}}, Operator: op, Left: left, Right: right}
		}
	}
	return left
}

func (p *parser) currentOperator() string {
	if p.curr.Kind == TokenKeyword && (p.curr.Value == "and" || p.curr.Value == "or") {
		return p.curr.Value
	}
	if p.curr.Kind == TokenSymbol {
		if _, ok := binaryPrecedence[p.curr.Value]; ok {
			return p.curr.Value
		}
	}
	return ""
}

func (p *parser) parseUnary() Expression {
	if (p.curr.Kind == TokenKeyword && p.curr.Value == "not") ||
		(p.curr.Kind == TokenSymbol && (p.curr.Value == "-" || p.curr.Value == "#" || p.curr.Value == "~")) {
		op := p.curr
		p.advance()
		arg := p.parseBinary(unaryPrecedence)
		return &UnaryExpression{expr: expr{base{NodeRange: Range{op.Range.Start, arg.Range().End}}}, Operator: op.Value, Argument: arg}
	}
	return p.parseSuffixedExpression()
}

// parseSuffixedExpression parses a primary expression followed by any chain
// of `.name`, `[expr]`, `(args)`, `:method(args)` suffixes.
func (p *parser) parseSuffixedExpression() Expression {
	e := p.parsePrimary()
	for {
		switch {
		case p.isSymbol("."):
			p.advance()
			prop := p.expectName()
			e = &MemberExpression{expr: expr{base{NodeRange: Range{e.Range().Start, prop.Range().End}}}, Base: e, Property: prop}
		case p.isSymbol("["):
			p.advance()
			idx := p.parseExpression()
			end := p.curr.Range.End
			p.expectSymbol("]")
			e = &IndexExpression{expr: expr{base{NodeRange: Range{e.Range().Start, end}}}, Base: e, Index: idx}
		case p.isSymbol(":"):
			p.advance()
			method := p.expectName()
			args, end := p.parseCallArguments()
			e = &CallExpression{expr: expr{base{NodeRange: Range{e.Range().Start, end}}}, Base: e, Method: method, Arguments: args}
		case p.isSymbol("(") || p.curr.Kind == TokenString || p.isSymbol("{"):
			args, end := p.parseCallArguments()
			e = &CallExpression{expr: expr{base{NodeRange: Range{e.Range().Start, end}}}, Base: e, Arguments: args}
		default:
			return e
		}
	}
}

func (p *parser) parseCallArguments() ([]Expression, int) {
	if p.curr.Kind == TokenString {
		t := p.curr
		p.advance()
		return []Expression{&StringLiteral{expr: expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}, Value: t.Value, Raw: t.Value}}, t.Range.End
	}
	if p.isSymbol("{") {
		table := p.parseTableConstructor()
		return []Expression{table}, table.Range().End
	}
	p.expectSymbol("(")
	var args []Expression
	if !p.isSymbol(")") {
		args = p.parseExpressionList()
	}
	end := p.curr.Range.End
	p.expectSymbol(")")
	return args, end
}

func (p *parser) parsePrimary() Expression {
	switch {
	case p.curr.Kind == TokenName:
		t := p.curr
		p.advance()
		return &Identifier{expr: expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}, Name: t.Value}
	case p.curr.Kind == TokenNumber:
		return p.parseNumber()
	case p.curr.Kind == TokenString:
		t := p.curr
		p.advance()
		return &StringLiteral{expr: expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}, Value: t.Value, Raw: t.Value}
	case p.isKeyword("nil"):
		t := p.curr
		p.advance()
		return &NilLiteral{expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}}
	case p.isKeyword("true") || p.isKeyword("false"):
		t := p.curr
		p.advance()
		return &BooleanLiteral{expr: expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}, Value: t.Value == "true"}
	case p.isSymbol("..."):
		t := p.curr
		p.advance()
		return &VarargLiteral{expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}}
	case p.isSymbol("{"):
		return p.parseTableConstructor()
	case p.isKeyword("function"):
		return p.parseFunctionExpression()
	case p.isSymbol("("):
		start := p.curr.Range.Start
		p.advance()
		inner := p.parseExpression()
		end := p.curr.Range.End
		p.expectSymbol(")")
		return &ParenExpression{expr: expr{base{NodeRange: Range{start, end}}}, Argument: inner}
	default:
		p.fail(fmt.Sprintf("unexpected symbol near %s", tokenDescription(p.curr)))
		t := p.curr
		return &NilLiteral{expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}}
	}
}

func (p *parser) parseNumber() Expression {
	t := p.curr
	p.advance()
	isInt := true
	var f float64
	fmt.Sscanf(t.Value, "%g", &f)
	for _, c := range t.Value {
		if c == '.' || c == 'e' || c == 'E' || c == 'p' || c == 'P' {
			isInt = false
			break
		}
	}
	return &NumberLiteral{expr: expr{base{NodeRange: t.Range, NodeLoc: t.Loc}}, Value: f, IsInteger: isInt, Raw: t.Value}
}

func (p *parser) parseFunctionExpression() Expression {
	start := p.curr
	p.advance() // function
	p.expectSymbol("(")
	params, vararg := p.parseParameterList(false)
	p.expectSymbol(")")
	body := p.parseBlock()
	end := p.curr.Range.End
	p.expectKeyword("end")
	return &FunctionExpression{
		expr:       expr{base{NodeRange: Range{start.Range.Start, end}}},
		Parameters: params, IsVararg: vararg, Body: body,
	}
}

func (p *parser) parseTableConstructor() Expression {
	start := p.curr.Range.Start
	p.advance() // {
	var fields []*TableField
	for !p.isSymbol("}") && !p.atEOF() {
		fields = append(fields, p.parseTableField())
		if p.isSymbol(",") || p.isSymbol(";") {
			p.advance()
			continue
		}
		break
	}
	end := p.curr.Range.End
	p.expectSymbol("}")
	return &TableConstructor{expr: expr{base{NodeRange: Range{start, end}}}, Fields: fields}
}

func (p *parser) parseTableField() *TableField {
	if p.isSymbol("[") {
		p.advance()
		key := p.parseExpression()
		p.expectSymbol("]")
		p.expectSymbol("=")
		val := p.parseExpression()
		return &TableField{Key: key, Value: val}
	}
	if p.curr.Kind == TokenName && p.peek().Kind == TokenSymbol && p.peek().Value == "=" {
		name := p.expectName()
		p.advance() // =
		val := p.parseExpression()
		return &TableField{Key: name, Value: val}
	}
	return &TableField{Value: p.parseExpression()}
}
