package suggest

import (
	"strings"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// Options is the per-engine completion configuration.
type Options struct {
	// LiteralPaths disables wildcard expansion during path completion.
	LiteralPaths bool
	// RelativePaths forces relative (true) or absolute (false) results.
	// When unset the default policy applies: relative unless the word is
	// already absolute, drive-qualified or ~-rooted.
	RelativePaths *bool
	// IgnoreHiddenShares drops hidden (dollar-suffixed) shares from UNC
	// completion.
	IgnoreHiddenShares bool
	// MaxResults bounds any single completion list; zero means unbounded.
	MaxResults int
}

// Context carries one completion request. It is created per request and is
// immutable except for the replacement span, which sub-routines refine.
type Context struct {
	Line              string
	CursorPos         int
	WordToComplete    string
	RelatedAsts       []syntax.Node // nodes enclosing the cursor, outermost last
	TokenAtCursor     *syntax.Token
	TokenBeforeCursor *syntax.Token
	Binding           *binding.Info
	Options           Options
	Host              session.Host

	// ReplacementIndex and ReplacementLength give the span of the line the
	// completion text replaces.
	ReplacementIndex  int
	ReplacementLength int

	quote byte // quote character stripped from WordToComplete, 0 if none

	parse *syntax.ParseResult
}

// NewContext assembles a request context from a parse result. The word to
// complete is the token at (or immediately before) the cursor, with
// surrounding quotes stripped.
func NewContext(parse *syntax.ParseResult, line string, cursor int, host session.Host, opts Options) *Context {
	ctx := &Context{
		Line:             line,
		CursorPos:        cursor,
		Host:             host,
		Options:          opts,
		ReplacementIndex: cursor,
	}
	if parse == nil {
		return ctx
	}
	ctx.parse = parse
	ctx.RelatedAsts = syntax.EnclosingNodes(parse.Root, cursor)
	ctx.TokenAtCursor = syntax.TokenAt(parse.Tokens, cursor)
	ctx.TokenBeforeCursor = syntax.TokenBefore(parse.Tokens, cursor)

	if tok := ctx.TokenAtCursor; tok != nil {
		ctx.ReplacementIndex = tok.Pos.Start
		ctx.ReplacementLength = cursor - tok.Pos.Start
		word := line[tok.Pos.Start:cursor]
		ctx.WordToComplete, ctx.quote = stripQuotes(word)
	}
	return ctx
}

// InnermostAst returns the node at the cursor, or nil.
func (c *Context) InnermostAst() syntax.Node {
	if len(c.RelatedAsts) == 0 {
		return nil
	}
	return c.RelatedAsts[0]
}

// EnclosingCommand returns the innermost command node containing the cursor.
// A cursor on the whitespace after a command's last argument still belongs to
// that command as long as no statement separator intervenes.
func (c *Context) EnclosingCommand() *syntax.Command {
	for _, n := range c.RelatedAsts {
		if cmd, ok := n.(*syntax.Command); ok {
			return cmd
		}
	}
	return c.trailingCommand()
}

// trailingCommand finds the nearest command ending at or before the cursor
// with only whitespace or command arguments between its span and the cursor.
func (c *Context) trailingCommand() *syntax.Command {
	if c.parse == nil || c.parse.Root == nil {
		return nil
	}
	var best *syntax.Command
	syntax.Walk(c.parse.Root, func(n syntax.Node) bool {
		if cmd, ok := n.(*syntax.Command); ok && cmd.Pos.End <= c.CursorPos {
			if best == nil || cmd.Pos.End > best.Pos.End {
				best = cmd
			}
		}
		return true
	})
	if best == nil {
		return nil
	}
	for _, tok := range c.parse.Tokens {
		if tok.Pos.Start < best.Pos.End || tok.Pos.End > c.CursorPos {
			continue
		}
		switch tok.Kind {
		case syntax.TokPipe, syntax.TokSemicolon, syntax.TokAmpersand,
			syntax.TokLParen, syntax.TokRParen, syntax.TokLBrace, syntax.TokRBrace,
			syntax.TokDollarParen:
			return nil
		}
	}
	return best
}

// EnclosingPipeline returns the innermost pipeline containing the cursor.
func (c *Context) EnclosingPipeline() *syntax.Pipeline {
	for _, n := range c.RelatedAsts {
		if p, ok := n.(*syntax.Pipeline); ok {
			return p
		}
	}
	return nil
}

// cancelled polls the host's cooperative cancellation flag.
func (c *Context) cancelled() bool {
	return c.Host != nil && c.Host.IsCancelled()
}

// stripQuotes removes one leading (and matching trailing) quote character
// and reports which quote was found.
func stripQuotes(word string) (string, byte) {
	if word == "" {
		return word, 0
	}
	quote := word[0]
	if quote != '\'' && quote != '"' {
		return word, 0
	}
	word = word[1:]
	if len(word) > 0 && word[len(word)-1] == quote {
		word = word[:len(word)-1]
	}
	return word, quote
}

// restoreQuote re-applies the stripped quote character around a completion.
func (c *Context) restoreQuote(text string) string {
	if c.quote == 0 {
		return text
	}
	q := string(c.quote)
	return q + strings.TrimSuffix(strings.TrimPrefix(text, q), q) + q
}
