package syntax

// TokenKind classifies a lexical token.
type TokenKind int

// Token kinds produced by the tokenizer.
const (
	TokEOF TokenKind = iota
	TokIdentifier
	TokParameter // -Name, optionally with trailing colon
	TokVariable  // $name
	TokNumber
	TokString
	TokOperator // symbolic operators and -eq style word operators
	TokKeyword
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokPipe
	TokSemicolon
	TokComma
	TokAmpersand
	TokDot
	TokStaticOp // ::
	TokAtParen  // @(
	TokAtBrace  // @{
	TokDollarParen
)

var tokenKindNames = map[TokenKind]string{
	TokEOF:         "eof",
	TokIdentifier:  "identifier",
	TokParameter:   "parameter",
	TokVariable:    "variable",
	TokNumber:      "number",
	TokString:      "string",
	TokOperator:    "operator",
	TokKeyword:     "keyword",
	TokLParen:      "lparen",
	TokRParen:      "rparen",
	TokLBrace:      "lbrace",
	TokRBrace:      "rbrace",
	TokLBracket:    "lbracket",
	TokRBracket:    "rbracket",
	TokPipe:        "pipe",
	TokSemicolon:   "semicolon",
	TokComma:       "comma",
	TokAmpersand:   "ampersand",
	TokDot:         "dot",
	TokStaticOp:    "staticop",
	TokAtParen:     "atparen",
	TokAtBrace:     "atbrace",
	TokDollarParen: "dollarparen",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is one lexical token of the parsed line.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Span
}

// Keywords reserved by the shell language. Completing one of these as a bare
// command name requires the call operator.
var Keywords = map[string]bool{
	"begin": true, "break": true, "class": true, "continue": true,
	"do": true, "else": true, "elseif": true, "end": true, "enum": true,
	"for": true, "foreach": true, "function": true, "if": true,
	"in": true, "param": true, "process": true, "return": true,
	"switch": true, "throw": true, "trap": true, "try": true,
	"until": true, "using": true, "while": true,
}

// TokenAt returns the token whose span contains the cursor, or nil.
func TokenAt(tokens []Token, cursor int) *Token {
	for i := range tokens {
		t := &tokens[i]
		if t.Kind == TokEOF {
			break
		}
		if t.Pos.Start < cursor && cursor <= t.Pos.End {
			return t
		}
	}
	return nil
}

// TokenBefore returns the last token ending at or before the cursor, or nil.
func TokenBefore(tokens []Token, cursor int) *Token {
	var prev *Token
	for i := range tokens {
		t := &tokens[i]
		if t.Kind == TokEOF {
			break
		}
		if t.Pos.End <= cursor {
			prev = t
			continue
		}
		break
	}
	return prev
}
