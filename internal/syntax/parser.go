package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nacre-sh/nacre/internal/derrors"
)

// ParseResult is what a Parser hands to the suggestion engine: the syntax
// tree, the token stream, and any parse errors. A line with errors still
// yields a best-effort tree so completion works on partial input.
type ParseResult struct {
	Root   *ScriptBlock
	Tokens []Token
	Errors []error
}

// Parser turns a line of input into a syntax tree. The production shell
// injects its own implementation; LineParser below is the reference one.
type Parser interface {
	Parse(text string) *ParseResult
}

// LineParser is a compact recursive-descent parser for the command-line
// subset of the shell grammar. It is tolerant: unterminated strings, open
// member accesses and half-typed parameters all produce usable trees.
type LineParser struct{}

// NewLineParser creates a reference parser.
func NewLineParser() *LineParser { return &LineParser{} }

// Parse implements Parser.
func (LineParser) Parse(text string) *ParseResult {
	tokens := tokenize(text)
	p := &parser{tokens: tokens}
	root := p.parseScriptBlock(TokEOF, 0, len(text))
	return &ParseResult{Root: root, Tokens: tokens, Errors: p.errors}
}

// wordOperators are the dash-prefixed operators recognized in expression
// position. Inside a command's argument list a dash token is always a
// parameter, matching the shell's own ambiguity rule.
var wordOperators = map[string]bool{
	"eq": true, "ne": true, "gt": true, "ge": true, "lt": true, "le": true,
	"like": true, "notlike": true, "match": true, "notmatch": true,
	"contains": true, "notcontains": true, "in": true, "notin": true,
	"replace": true, "and": true, "or": true, "xor": true, "not": true,
	"band": true, "bor": true, "bxor": true, "bnot": true,
	"split": true, "join": true, "is": true, "isnot": true, "as": true,
	"f": true, "shl": true, "shr": true,
}

func isWordOperator(name string) bool {
	return wordOperators[strings.ToLower(name)]
}

// --- tokenizer ---

func isWordStart(c byte) bool {
	return c == '_' || c == '.' || c == '/' || c == '\\' || c == '~' ||
		c == '*' || c == '?' || c == '+' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c >= 0x80
}

func isWordChar(c byte) bool {
	return isWordStart(c) || c == '-' || c == ':' || c == '#' || c == '%' || c == '='
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c >= 0x80
}

func tokenize(text string) []Token {
	var toks []Token
	i := 0
	n := len(text)
	// lastValue tracks whether the previous token can end a value, which
	// decides if . :: [ start a postfix operation
	lastValue := false
	lastEnd := -1

	emit := func(kind TokenKind, start, end int) {
		toks = append(toks, Token{Kind: kind, Text: text[start:end], Pos: Span{start, end}})
		switch kind {
		case TokVariable, TokRParen, TokRBracket, TokString, TokNumber, TokIdentifier:
			lastValue = true
		default:
			lastValue = false
		}
		lastEnd = end
	}

	for i < n {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			if c == '\n' {
				emit(TokSemicolon, i, i+1)
			}
			i++
		case c == '#':
			for i < n && text[i] != '\n' {
				i++
			}
		case c == '|':
			emit(TokPipe, i, i+1)
			i++
		case c == ';':
			emit(TokSemicolon, i, i+1)
			i++
		case c == ',':
			emit(TokComma, i, i+1)
			i++
		case c == '(':
			emit(TokLParen, i, i+1)
			i++
		case c == ')':
			emit(TokRParen, i, i+1)
			i++
		case c == '{':
			emit(TokLBrace, i, i+1)
			i++
		case c == '}':
			emit(TokRBrace, i, i+1)
			i++
		case c == '[':
			emit(TokLBracket, i, i+1)
			i++
		case c == ']':
			emit(TokRBracket, i, i+1)
			i++
		case c == '&':
			emit(TokAmpersand, i, i+1)
			i++
		case c == '@' && i+1 < n && text[i+1] == '(':
			emit(TokAtParen, i, i+2)
			i += 2
		case c == '@' && i+1 < n && text[i+1] == '{':
			emit(TokAtBrace, i, i+2)
			i += 2
		case c == ':' && i+1 < n && text[i+1] == ':':
			emit(TokStaticOp, i, i+2)
			i += 2
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < n {
				if text[j] == '`' && quote == '"' && j+1 < n {
					j += 2
					continue
				}
				if text[j] == quote {
					if quote == '\'' && j+1 < n && text[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			emit(TokString, i, j)
			i = j
		case c == '$':
			if i+1 < n && text[i+1] == '(' {
				emit(TokDollarParen, i, i+2)
				i += 2
				break
			}
			if i+1 < n && text[i+1] == '{' {
				j := i + 2
				for j < n && text[j] != '}' {
					j++
				}
				if j < n {
					j++
				}
				emit(TokVariable, i, j)
				i = j
				break
			}
			j := i + 1
			for j < n && (isIdentChar(text[j]) || text[j] == ':') {
				// a trailing colon only belongs to the variable for
				// scope/drive qualifiers like $env:PATH
				if text[j] == ':' && (j+1 >= n || !isIdentChar(text[j+1])) {
					break
				}
				j++
			}
			emit(TokVariable, i, j)
			i = j
		case c == '.' && lastValue && lastEnd == i:
			emit(TokDot, i, i+1)
			i++
		case c == '-':
			// a dash adjacent to a value is subtraction; after whitespace
			// it starts a parameter (or word operator) token
			if i+1 < n && isIdentChar(text[i+1]) && !(lastValue && lastEnd == i) {
				j := i + 1
				for j < n && (isIdentChar(text[j]) || text[j] == '-') {
					j++
				}
				if j < n && text[j] == ':' {
					j++
				}
				emit(TokParameter, i, j)
				i = j
				break
			}
			emit(TokOperator, i, i+1)
			i++
		case strings.IndexByte("+*/%!<>=", c) >= 0:
			j := i + 1
			for j < n && strings.IndexByte("+-*/%!<>=", text[j]) >= 0 {
				j++
			}
			emit(TokOperator, i, j)
			i = j
		case isWordStart(c):
			afterMember := len(toks) > 0 &&
				(toks[len(toks)-1].Kind == TokDot || toks[len(toks)-1].Kind == TokStaticOp) &&
				toks[len(toks)-1].Pos.End == i
			j := i
			if afterMember {
				// member names stop at dots so chains split correctly
				for j < n && (isIdentChar(text[j]) || text[j] == '*' || text[j] == '?') {
					j++
				}
				if j == i {
					j = i + 1
				}
				emit(TokIdentifier, i, j)
				i = j
				break
			}
			for j < n && isWordChar(text[j]) {
				j++
			}
			word := text[i:j]
			switch {
			case looksNumeric(word):
				emit(TokNumber, i, j)
			case Keywords[strings.ToLower(word)]:
				emit(TokKeyword, i, j)
			default:
				emit(TokIdentifier, i, j)
			}
			i = j
		default:
			emit(TokOperator, i, i+1)
			i++
		}
	}
	toks = append(toks, Token{Kind: TokEOF, Pos: Span{n, n}})
	return toks
}

func looksNumeric(word string) bool {
	if _, err := strconv.ParseInt(word, 0, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return true
	}
	return false
}

// --- parser ---

type parser struct {
	tokens []Token
	pos    int
	errors []error
}

func (p *parser) cur() Token  { return p.tokens[p.pos] }
func (p *parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind) Token {
	if p.cur().Kind == kind {
		return p.next()
	}
	p.errorf(p.cur().Pos.Start, "expected %v, found %v", kind, p.cur().Kind)
	return Token{Kind: kind, Pos: Span{p.cur().Pos.Start, p.cur().Pos.Start}}
}

func (p *parser) errorf(offset int, format string, args ...interface{}) {
	p.errors = append(p.errors, derrors.NewParseError(offset, fmt.Sprintf(format, args...), nil))
}

func (p *parser) parseScriptBlock(end TokenKind, start, fallbackEnd int) *ScriptBlock {
	block := &ScriptBlock{Pos: Span{start, fallbackEnd}}
	for p.cur().Kind != end && p.cur().Kind != TokEOF {
		if p.cur().Kind == TokSemicolon {
			p.next()
			continue
		}
		before := p.pos
		stmt := p.parseStatement(block)
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.pos == before {
			p.next() // never stall on an unexpected token
		}
	}
	if len(block.Statements) > 0 {
		first := block.Statements[0].Span().Start
		last := block.Statements[len(block.Statements)-1].Span().End
		if first < block.Pos.Start {
			block.Pos.Start = first
		}
		if last > block.Pos.End {
			block.Pos.End = last
		}
	}
	return block
}

func (p *parser) parseStatement(block *ScriptBlock) Node {
	t := p.cur()
	if t.Kind == TokKeyword {
		switch strings.ToLower(t.Text) {
		case "using":
			return p.parseUsing(block)
		case "function":
			return p.parseFunction()
		case "class":
			return p.parseClass()
		case "param":
			p.parseParamBlock(block)
			return nil
		}
		// other keywords start commands as far as completion is concerned
	}
	if t.Kind == TokVariable {
		switch p.peek().Kind {
		case TokOperator:
			if isAssignOp(p.peek().Text) {
				return p.parseAssignment()
			}
		case TokDot, TokLBracket:
			// may still be an assignment like $x.y = 1; scan ahead
			if p.scanAssignment() {
				return p.parseAssignment()
			}
		}
	}
	if t.Kind == TokLBracket && p.scanAssignment() {
		// typed assignment like [int]$n = 5; the cast becomes the target
		return p.parseAssignment()
	}
	return p.parsePipeline()
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=":
		return true
	}
	return false
}

// scanAssignment looks ahead from a variable for an assignment operator
// before the statement ends.
func (p *parser) scanAssignment() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case TokLBracket, TokLParen:
			depth++
		case TokRBracket, TokRParen:
			depth--
		case TokOperator:
			if depth == 0 && isAssignOp(p.tokens[i].Text) {
				return true
			}
		case TokPipe, TokSemicolon, TokEOF:
			if depth <= 0 {
				return false
			}
		}
	}
	return false
}

func (p *parser) parseUsing(block *ScriptBlock) Node {
	start := p.next() // using
	if p.cur().Kind == TokIdentifier && strings.EqualFold(p.cur().Text, "namespace") {
		p.next()
		ns := ""
		end := p.cur().Pos.End
		if p.cur().Kind == TokIdentifier {
			ns = p.next().Text
		}
		u := &UsingNamespace{Pos: Span{start.Pos.Start, end}, Namespace: ns}
		block.Usings = append(block.Usings, u)
		return u
	}
	return &ErrorExpr{Pos: start.Pos}
}

func (p *parser) parseFunction() Node {
	start := p.next() // function
	name := ""
	if p.cur().Kind == TokIdentifier {
		name = p.next().Text
	}
	fn := &FunctionDef{Pos: Span{start.Pos.Start, start.Pos.End}, Name: name}
	if p.cur().Kind == TokLParen {
		p.next()
		fn.Params = p.parseParameterList(TokRParen)
		p.expect(TokRParen)
	}
	if p.cur().Kind == TokLBrace {
		open := p.next()
		fn.Body = p.parseScriptBlock(TokRBrace, open.Pos.Start, open.Pos.End)
		closeTok := p.expect(TokRBrace)
		fn.Body.Pos.End = closeTok.Pos.End
		if len(fn.Body.Params) == 0 {
			fn.Params = append(fn.Params, fn.Body.Params...)
		}
	} else {
		fn.Body = &ScriptBlock{Pos: Span{start.Pos.End, start.Pos.End}}
	}
	fn.Pos.End = fn.Body.Pos.End
	if len(fn.Body.Params) > 0 && len(fn.Params) == 0 {
		fn.Params = fn.Body.Params
	}
	return fn
}

func (p *parser) parseClass() Node {
	start := p.next() // class
	cls := &ClassDef{Pos: start.Pos}
	if p.cur().Kind == TokIdentifier {
		cls.Name = p.next().Text
	}
	if p.cur().Kind == TokOperator && p.cur().Text == ":" {
		p.next()
	}
	for p.cur().Kind == TokIdentifier && cls.Name != "" && p.peek().Kind != TokLParen {
		// base type list, comma separated
		cls.BaseTypes = append(cls.BaseTypes, p.next().Text)
		if p.cur().Kind == TokComma {
			p.next()
			continue
		}
		break
	}
	if p.cur().Kind != TokLBrace {
		return cls
	}
	p.next()
	for p.cur().Kind != TokRBrace && p.cur().Kind != TokEOF {
		p.parseClassMember(cls)
	}
	closeTok := p.expect(TokRBrace)
	cls.Pos.End = closeTok.Pos.End
	return cls
}

func (p *parser) parseClassMember(cls *ClassDef) {
	start := p.cur().Pos
	static, hidden := false, false
	for p.cur().Kind == TokIdentifier {
		switch strings.ToLower(p.cur().Text) {
		case "static":
			static = true
			p.next()
			continue
		case "hidden":
			hidden = true
			p.next()
			continue
		}
		break
	}
	typeName := ""
	if p.cur().Kind == TokLBracket {
		p.next()
		if p.cur().Kind == TokIdentifier {
			typeName = p.next().Text
		}
		p.expect(TokRBracket)
	}
	switch p.cur().Kind {
	case TokVariable:
		v := p.next()
		cls.Properties = append(cls.Properties, &PropertyDef{
			Pos:      Span{start.Start, v.Pos.End},
			Name:     strings.TrimPrefix(v.Text, "$"),
			TypeName: typeName,
			Static:   static,
			Hidden:   hidden,
		})
		if p.cur().Kind == TokOperator && p.cur().Text == "=" {
			p.next()
			p.parseExpr(false)
		}
		if p.cur().Kind == TokSemicolon {
			p.next()
		}
	case TokIdentifier, TokKeyword:
		name := p.next().Text
		m := &MethodDef{
			Pos:        Span{start.Start, p.cur().Pos.End},
			Name:       name,
			ReturnType: typeName,
			Static:     static,
			Hidden:     hidden,
		}
		if p.cur().Kind == TokLParen {
			p.next()
			m.Params = p.parseParameterList(TokRParen)
			p.expect(TokRParen)
		}
		if p.cur().Kind == TokLBrace {
			open := p.next()
			p.parseScriptBlock(TokRBrace, open.Pos.Start, open.Pos.End)
			closeTok := p.expect(TokRBrace)
			m.Pos.End = closeTok.Pos.End
		}
		cls.Methods = append(cls.Methods, m)
	default:
		p.next()
	}
}

func (p *parser) parseParamBlock(block *ScriptBlock) {
	p.next() // param
	if p.cur().Kind != TokLParen {
		return
	}
	p.next()
	block.Params = p.parseParameterList(TokRParen)
	p.expect(TokRParen)
}

func (p *parser) parseParameterList(end TokenKind) []*Parameter {
	var params []*Parameter
	for p.cur().Kind != end && p.cur().Kind != TokEOF {
		before := p.pos
		param := &Parameter{Pos: p.cur().Pos}
		for p.cur().Kind == TokLBracket {
			p.next()
			if p.cur().Kind == TokIdentifier && p.peek().Kind == TokLParen {
				param.Attributes = append(param.Attributes, p.parseAttributeBody())
			} else if p.cur().Kind == TokIdentifier {
				param.Type = p.parseTypeName()
			}
			p.expect(TokRBracket)
		}
		if p.cur().Kind == TokVariable {
			v := p.next()
			param.Name = strings.TrimPrefix(v.Text, "$")
			param.Pos.End = v.Pos.End
		}
		if p.cur().Kind == TokOperator && p.cur().Text == "=" {
			p.next()
			param.DefaultValue = p.parseExpr(false)
		}
		if param.Name != "" || param.Type != nil || len(param.Attributes) > 0 {
			params = append(params, param)
		}
		if p.cur().Kind == TokComma {
			p.next()
		}
		if p.pos == before {
			p.next()
		}
	}
	return params
}

func (p *parser) parseAttributeBody() *Attribute {
	name := p.next() // identifier
	attr := &Attribute{Pos: name.Pos, Name: name.Text, Named: map[string]Node{}}
	p.expect(TokLParen)
	for p.cur().Kind != TokRParen && p.cur().Kind != TokEOF {
		before := p.pos
		if p.cur().Kind == TokIdentifier && p.peek().Kind == TokOperator && p.peek().Text == "=" {
			key := p.next().Text
			p.next()
			attr.Named[key] = p.parseExpr(false)
		} else {
			attr.Positional = append(attr.Positional, p.parseExpr(false))
		}
		if p.cur().Kind == TokComma {
			p.next()
		}
		if p.pos == before {
			p.next()
		}
	}
	closeTok := p.expect(TokRParen)
	attr.Pos.End = closeTok.Pos.End
	return attr
}

func (p *parser) parsePipeline() Node {
	first := p.parseCommandOrExpr()
	if first == nil {
		return nil
	}
	if p.cur().Kind != TokPipe {
		return first
	}
	pipe := &Pipeline{Pos: first.Span(), Elements: []Node{first}}
	for p.cur().Kind == TokPipe {
		p.next()
		elem := p.parseCommandOrExpr()
		if elem == nil {
			break
		}
		pipe.Elements = append(pipe.Elements, elem)
		pipe.Pos.End = elem.Span().End
	}
	return pipe
}

func (p *parser) parseCommandOrExpr() Node {
	switch p.cur().Kind {
	case TokIdentifier, TokKeyword, TokAmpersand:
		return p.parseCommand()
	case TokString:
		// a quoted word in command position still invokes nothing without
		// the call operator, but completion wants it treated as a command
		if p.peek().Kind != TokDot && p.peek().Kind != TokStaticOp {
			return p.parseCommand()
		}
		return p.parseExpr(false)
	case TokParameter:
		return p.parseExpr(false)
	case TokEOF, TokPipe, TokSemicolon:
		return nil
	default:
		return p.parseExpr(false)
	}
}

func (p *parser) parseCommand() Node {
	startTok := p.cur()
	cmd := &Command{Pos: startTok.Pos}
	if p.cur().Kind == TokAmpersand {
		cmd.CallOperator = true
		p.next()
	}
	switch p.cur().Kind {
	case TokIdentifier, TokKeyword:
		name := p.next()
		cmd.Name = name.Text
		cmd.NamePos = name.Pos
		cmd.Pos.End = name.Pos.End
	case TokString:
		name := p.next()
		cmd.Name = unquote(name.Text)
		cmd.NamePos = name.Pos
		cmd.Pos.End = name.Pos.End
	default:
		// bare & with nothing after it
	}

	for {
		switch p.cur().Kind {
		case TokEOF, TokPipe, TokSemicolon, TokRParen, TokRBrace:
			return cmd
		case TokParameter:
			tok := p.next()
			param := &CommandParameter{Pos: tok.Pos, Name: strings.TrimPrefix(tok.Text, "-")}
			if strings.HasSuffix(param.Name, ":") {
				param.Name = strings.TrimSuffix(param.Name, ":")
				param.HasColon = true
				if startsExpression(p.cur().Kind) {
					param.Argument = p.parseExpr(true)
					param.Pos.End = param.Argument.Span().End
				}
			}
			cmd.Args = append(cmd.Args, param)
			cmd.Pos.End = param.Pos.End
		default:
			before := p.pos
			arg := p.parseExpr(true)
			if arg == nil || p.pos == before {
				p.next()
				continue
			}
			cmd.Args = append(cmd.Args, arg)
			cmd.Pos.End = arg.Span().End
		}
	}
}

func startsExpression(kind TokenKind) bool {
	switch kind {
	case TokIdentifier, TokVariable, TokNumber, TokString, TokLParen,
		TokDollarParen, TokAtParen, TokAtBrace, TokLBrace, TokLBracket,
		TokKeyword:
		return true
	}
	return false
}

// parseExpr parses one expression. In command-argument position
// (inCommand true) binary word operators are not consumed, since -eq after
// an argument is a parameter of the command, not an operator.
func (p *parser) parseExpr(inCommand bool) Node {
	left := p.parseUnary(inCommand)
	if left == nil {
		return nil
	}
	if !inCommand {
		for {
			t := p.cur()
			var op string
			switch {
			case t.Kind == TokOperator && !isAssignOp(t.Text):
				op = t.Text
			case t.Kind == TokParameter && isWordOperator(strings.TrimPrefix(t.Text, "-")):
				op = strings.ToLower(t.Text)
			default:
				op = ""
			}
			if op == "" {
				break
			}
			p.next()
			right := p.parseUnary(inCommand)
			if right == nil {
				right = &ErrorExpr{Pos: Span{t.Pos.End, t.Pos.End}}
			}
			left = &BinaryExpr{Pos: Span{left.Span().Start, right.Span().End}, Op: op, LHS: left, RHS: right}
		}
	}
	if p.cur().Kind == TokComma {
		arr := &ArrayLit{Pos: left.Span(), Elements: []Node{left}}
		for p.cur().Kind == TokComma {
			p.next()
			elem := p.parseUnary(inCommand)
			if elem == nil {
				break
			}
			arr.Elements = append(arr.Elements, elem)
			arr.Pos.End = elem.Span().End
		}
		return arr
	}
	return left
}

func (p *parser) parseUnary(inCommand bool) Node {
	t := p.cur()
	if t.Kind == TokOperator && (t.Text == "!" || t.Text == "-") {
		p.next()
		operand := p.parseUnary(inCommand)
		if operand == nil {
			operand = &ErrorExpr{Pos: Span{t.Pos.End, t.Pos.End}}
		}
		return &UnaryExpr{Pos: Span{t.Pos.Start, operand.Span().End}, Op: t.Text, Operand: operand}
	}
	if !inCommand && t.Kind == TokParameter && isWordOperator(strings.TrimPrefix(t.Text, "-")) {
		p.next()
		operand := p.parseUnary(inCommand)
		if operand == nil {
			operand = &ErrorExpr{Pos: Span{t.Pos.End, t.Pos.End}}
		}
		return &UnaryExpr{Pos: Span{t.Pos.Start, operand.Span().End}, Op: strings.ToLower(t.Text), Operand: operand}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(expr Node) Node {
	if expr == nil {
		return nil
	}
	for {
		switch p.cur().Kind {
		case TokDot, TokStaticOp:
			opTok := p.next()
			static := opTok.Kind == TokStaticOp
			var member Node
			switch p.cur().Kind {
			case TokIdentifier, TokKeyword:
				m := p.next()
				member = &StringLit{Pos: m.Pos, Value: m.Text}
			case TokString:
				m := p.next()
				member = &StringLit{Pos: m.Pos, Value: unquote(m.Text), Quote: m.Text[0]}
			case TokVariable:
				m := p.next()
				member = &VariableExpr{Pos: m.Pos, Name: strings.TrimPrefix(m.Text, "$")}
			default:
				// cursor right after the dot: empty member to complete
				member = &StringLit{Pos: Span{opTok.Pos.End, opTok.Pos.End}}
			}
			expr = &MemberExpr{
				Pos:    Span{expr.Span().Start, member.Span().End},
				Target: expr,
				Member: member,
				Static: static,
			}
		case TokLBracket:
			// only a postfix index when adjacent to the value
			if p.cur().Pos.Start != expr.Span().End {
				return expr
			}
			p.next()
			var index Node
			if p.cur().Kind != TokRBracket {
				index = p.parseExpr(false)
			}
			closeTok := p.expect(TokRBracket)
			expr = &IndexExpr{Pos: Span{expr.Span().Start, closeTok.Pos.End}, Target: expr, Index: index}
		default:
			return expr
		}
	}
}

func (p *parser) parsePrimary() Node {
	t := p.cur()
	switch t.Kind {
	case TokVariable:
		p.next()
		return &VariableExpr{Pos: t.Pos, Name: variableName(t.Text)}
	case TokNumber:
		p.next()
		lit := &NumberLit{Pos: t.Pos, Raw: t.Text}
		if iv, err := strconv.ParseInt(t.Text, 0, 64); err == nil {
			lit.IsInt = true
			lit.Int = iv
			lit.Value = float64(iv)
		} else if fv, err := strconv.ParseFloat(t.Text, 64); err == nil {
			lit.Value = fv
		}
		return lit
	case TokString:
		p.next()
		return &StringLit{Pos: t.Pos, Value: unquote(t.Text), Quote: t.Text[0]}
	case TokIdentifier, TokKeyword:
		p.next()
		return &StringLit{Pos: t.Pos, Value: t.Text}
	case TokParameter:
		p.next()
		return &StringLit{Pos: t.Pos, Value: t.Text}
	case TokLParen:
		open := p.next()
		var inner Node
		if p.cur().Kind == TokIdentifier || p.cur().Kind == TokAmpersand {
			inner = p.parsePipeline()
		} else {
			inner = p.parseExpr(false)
		}
		if inner == nil {
			inner = &ErrorExpr{Pos: Span{open.Pos.End, open.Pos.End}}
		}
		closeTok := p.expect(TokRParen)
		return &ParenExpr{Pos: Span{open.Pos.Start, closeTok.Pos.End}, Inner: inner}
	case TokDollarParen:
		open := p.next()
		block := p.parseScriptBlock(TokRParen, open.Pos.Start, open.Pos.End)
		closeTok := p.expect(TokRParen)
		return &SubExpr{Pos: Span{open.Pos.Start, closeTok.Pos.End}, Block: block}
	case TokAtParen:
		open := p.next()
		arr := &ArrayLit{Pos: open.Pos}
		for p.cur().Kind != TokRParen && p.cur().Kind != TokEOF {
			before := p.pos
			var elem Node
			if p.cur().Kind == TokIdentifier || p.cur().Kind == TokAmpersand {
				elem = p.parsePipeline()
			} else {
				elem = p.parseExpr(false)
			}
			if elem != nil {
				arr.Elements = append(arr.Elements, elem)
			}
			if p.cur().Kind == TokSemicolon || p.cur().Kind == TokComma {
				p.next()
			}
			if p.pos == before {
				p.next()
			}
		}
		closeTok := p.expect(TokRParen)
		arr.Pos.End = closeTok.Pos.End
		return arr
	case TokAtBrace:
		return p.parseHashtable()
	case TokLBrace:
		open := p.next()
		block := p.parseScriptBlock(TokRBrace, open.Pos.Start, open.Pos.End)
		closeTok := p.expect(TokRBrace)
		return &ScriptBlockExpr{Pos: Span{open.Pos.Start, closeTok.Pos.End}, Body: block}
	case TokLBracket:
		return p.parseTypeLitOrConvert()
	default:
		return nil
	}
}

func (p *parser) parseHashtable() Node {
	open := p.next() // @{
	ht := &HashtableLit{Pos: open.Pos}
	for p.cur().Kind != TokRBrace && p.cur().Kind != TokEOF {
		before := p.pos
		entry := &HashEntry{Pos: p.cur().Pos}
		switch p.cur().Kind {
		case TokIdentifier, TokKeyword:
			k := p.next()
			entry.Key = &StringLit{Pos: k.Pos, Value: k.Text}
		case TokString:
			k := p.next()
			entry.Key = &StringLit{Pos: k.Pos, Value: unquote(k.Text), Quote: k.Text[0]}
		case TokNumber, TokVariable:
			entry.Key = p.parsePrimary()
		default:
			p.next()
			continue
		}
		entry.Pos.End = entry.Key.Span().End
		if p.cur().Kind == TokOperator && p.cur().Text == "=" {
			p.next()
			entry.Value = p.parseExpr(false)
			if entry.Value != nil {
				entry.Pos.End = entry.Value.Span().End
			}
		}
		ht.Entries = append(ht.Entries, entry)
		if p.cur().Kind == TokSemicolon || p.cur().Kind == TokComma {
			p.next()
		}
		if p.pos == before {
			p.next()
		}
	}
	closeTok := p.expect(TokRBrace)
	ht.Pos.End = closeTok.Pos.End
	return ht
}

func (p *parser) parseTypeLitOrConvert() Node {
	open := p.next() // [
	tn := p.parseTypeName()
	closeTok := p.expect(TokRBracket)
	lit := &TypeLit{Pos: Span{open.Pos.Start, closeTok.Pos.End}, Type: tn}
	// an immediately following value makes this a conversion
	if startsExpression(p.cur().Kind) && p.cur().Kind != TokIdentifier &&
		p.cur().Pos.Start == closeTok.Pos.End {
		operand := p.parseUnary(false)
		if operand != nil {
			return &ConvertExpr{Pos: Span{open.Pos.Start, operand.Span().End}, Type: tn, Operand: operand}
		}
	}
	return lit
}

func (p *parser) parseTypeName() *TypeName {
	tn := &TypeName{Pos: p.cur().Pos}
	if p.cur().Kind == TokIdentifier || p.cur().Kind == TokKeyword {
		t := p.next()
		tn.Name = t.Text
		tn.Pos = t.Pos
	}
	if p.cur().Kind == TokLBracket {
		p.next()
		for p.cur().Kind != TokRBracket && p.cur().Kind != TokEOF {
			before := p.pos
			tn.GenericArgs = append(tn.GenericArgs, p.parseTypeName())
			if p.cur().Kind == TokComma {
				p.next()
			}
			if p.pos == before {
				p.next()
			}
		}
		closeTok := p.expect(TokRBracket)
		tn.Pos.End = closeTok.Pos.End
	}
	return tn
}

func (p *parser) parseAssignment() Node {
	target := p.parsePostfix(p.parsePrimary())
	opTok := p.next()
	value := p.parseExpr(false)
	end := opTok.Pos.End
	if value != nil {
		end = value.Span().End
	}
	return &AssignmentStmt{
		Pos:    Span{target.Span().Start, end},
		Target: target,
		Op:     opTok.Text,
		Value:  value,
	}
}

// variableName strips the sigil and ${ } braces from a variable token.
func variableName(text string) string {
	name := strings.TrimPrefix(text, "$")
	if strings.HasPrefix(name, "{") {
		name = strings.TrimPrefix(name, "{")
		name = strings.TrimSuffix(name, "}")
	}
	return name
}

// unquote strips the surrounding quotes of a string token and resolves the
// doubling/backtick escapes. Unterminated strings lose only the opening
// quote.
func unquote(text string) string {
	if text == "" {
		return text
	}
	quote := text[0]
	if quote != '\'' && quote != '"' {
		return text
	}
	body := text[1:]
	if len(body) > 0 && body[len(body)-1] == quote {
		body = body[:len(body)-1]
	}
	if quote == '\'' {
		return strings.ReplaceAll(body, "''", "'")
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '`' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
