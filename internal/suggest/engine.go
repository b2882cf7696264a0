package suggest

import (
	"strings"
	"time"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/cim"
	"github.com/nacre-sh/nacre/internal/logger"
	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
	"github.com/nacre-sh/nacre/internal/timing"
	"github.com/nacre-sh/nacre/internal/typecat"
)

// Config wires an Engine's collaborators. Only Host is required for live
// completions; with a nil Host every operation returns an empty list.
type Config struct {
	Host     session.Host
	Resolver binding.Resolver
	Parser   syntax.Parser
	Catalog  *typecat.Catalog
	CIM      cim.Client
	Custom   *CustomRegistry
	Options  Options
	Logger   *logger.Logger
}

// Engine is the completion engine. One engine serves many requests; the
// only cross-request state are the type catalog and the CIM metadata
// caches, both snapshot-swapped, so no locking happens on the request path.
type Engine struct {
	host     session.Host
	resolver binding.Resolver
	parser   syntax.Parser
	catalog  *typecat.Catalog
	cim      cim.Client
	cimCache *cim.Cache
	custom   *CustomRegistry
	augment  *memberAugmentations
	opts     Options
	log      *logger.Logger
}

// NewEngine creates an engine from the config, applying defaults for every
// collaborator left nil.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		host:     cfg.Host,
		resolver: cfg.Resolver,
		parser:   cfg.Parser,
		catalog:  cfg.Catalog,
		cim:      cfg.CIM,
		cimCache: cim.Shared(),
		custom:   cfg.Custom,
		augment:  newMemberAugmentations(),
		opts:     cfg.Options,
		log:      cfg.Logger,
	}
	if e.parser == nil {
		e.parser = syntax.NewLineParser()
	}
	if e.catalog == nil {
		e.catalog = typecat.Default()
	}
	if e.custom == nil {
		e.custom = NewCustomRegistry()
	}
	if e.log == nil {
		e.log = logger.Discard()
	}
	if e.resolver == nil {
		if s, ok := cfg.Host.(*session.Session); ok {
			e.resolver = s.ResolveCommand
		}
	}
	return e
}

// Catalog exposes the engine's type catalog so the embedding shell can
// register types and invalidate on load events.
func (e *Engine) Catalog() *typecat.Catalog { return e.catalog }

// Custom exposes the out-of-band custom completer registry.
func (e *Engine) Custom() *CustomRegistry { return e.custom }

// RegisterMemberAugmentation attaches extra members to a type name, the way
// type-data extensions augment reflected members.
func (e *Engine) RegisterMemberAugmentation(typeName string, members ...MemberCandidate) {
	e.augment.add(typeName, members...)
}

// CompleteInput is the top-level entry point: parse the line, classify the
// syntactic context at the cursor and route to the matching completer.
// It never returns nil and never fails; a keystroke gets a best-effort
// partial list or nothing.
func (e *Engine) CompleteInput(line string, cursor int) []Result {
	if e.host == nil {
		return []Result{}
	}
	timer := timing.NewTimer()
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(line) {
		cursor = len(line)
	}
	parse := e.parser.Parse(line)
	timer.Mark("parse")
	ctx := NewContext(parse, line, cursor, e.host, e.opts)
	results := e.route(ctx)
	if results == nil {
		results = []Result{}
	}
	if e.opts.MaxResults > 0 && len(results) > e.opts.MaxResults {
		results = results[:e.opts.MaxResults]
	}
	e.log.Debug().
		Str("word", ctx.WordToComplete).
		Int("cursor", cursor).
		Int("results", len(results)).
		Dur("elapsed", timer.Elapsed()).
		Msg("completion request")
	return results
}

func (e *Engine) route(ctx *Context) []Result {
	// a #-word is a comment to the tokenizer, so recover it from the raw
	// line before consulting tokens at all
	if word, start := historyWordAt(ctx); word != "" {
		ctx.WordToComplete = word
		ctx.ReplacementIndex = start
		ctx.ReplacementLength = ctx.CursorPos - start
		return e.CompleteHistory(ctx)
	}
	// token-shape cases first: they disambiguate faster than node kinds
	if tok := ctx.TokenAtCursor; tok != nil {
		switch tok.Kind {
		case syntax.TokVariable:
			return e.CompleteVariable(ctx)
		case syntax.TokParameter:
			if ctx.EnclosingCommand() != nil {
				// "-Name:" wants the value, not more parameter names
				if strings.HasSuffix(tok.Text, ":") && ctx.CursorPos >= tok.Pos.End {
					ctx.WordToComplete = ""
					ctx.ReplacementIndex = ctx.CursorPos
					ctx.ReplacementLength = 0
					return e.CompleteArgument(ctx)
				}
				return e.CompleteParameter(ctx)
			}
			return e.CompleteOperator(ctx)
		case syntax.TokOperator:
			// a bare dash has no identifier to lex as a parameter yet
			if tok.Text == "-" && ctx.CursorPos == tok.Pos.End {
				if ctx.EnclosingCommand() != nil {
					return e.CompleteParameter(ctx)
				}
				return e.CompleteOperator(ctx)
			}
		}
	}

	inner := ctx.InnermostAst()
	if inner == nil {
		return e.afterTokenCompletion(ctx)
	}

	for i, node := range ctx.RelatedAsts {
		switch n := node.(type) {
		case *syntax.MemberExpr:
			if i == 0 || n.Member == ctx.RelatedAsts[i-1] {
				return e.CompleteMember(ctx)
			}
		case *syntax.UsingNamespace:
			return e.CompleteNamespace(ctx)
		case *syntax.TypeName:
			return e.CompleteType(ctx)
		case *syntax.TypeLit:
			return e.CompleteType(ctx)
		case *syntax.HashtableLit:
			if i == 0 || isHashKeyPosition(n, ctx.RelatedAsts[i-1]) {
				return e.CompleteHashtableKey(ctx)
			}
		case *syntax.Command:
			if ctx.CursorPos <= n.NamePos.End && n.NamePos.Contains(ctx.CursorPos) {
				return e.CompleteCommand(ctx)
			}
			if i == 0 {
				// cursor inside the command but not on any argument
				return e.afterTokenCompletion(ctx)
			}
			return e.CompleteArgument(ctx)
		}
	}
	return e.afterTokenCompletion(ctx)
}

// afterTokenCompletion handles a cursor sitting on whitespace: after a pipe
// or at line start a command is expected, inside a command an argument is.
func (e *Engine) afterTokenCompletion(ctx *Context) []Result {
	prev := ctx.TokenBeforeCursor
	if prev == nil {
		return e.CompleteCommand(ctx)
	}
	switch prev.Kind {
	case syntax.TokPipe, syntax.TokSemicolon, syntax.TokLParen, syntax.TokLBrace,
		syntax.TokDollarParen, syntax.TokAmpersand:
		return e.CompleteCommand(ctx)
	}
	if ctx.EnclosingCommand() != nil {
		return e.CompleteArgument(ctx)
	}
	return e.CompleteCommand(ctx)
}

// historyWordAt returns the #-prefixed word ending at the cursor and its
// start offset, or "" when the cursor is not on one.
func historyWordAt(ctx *Context) (string, int) {
	start := ctx.CursorPos
	for start > 0 {
		c := ctx.Line[start-1]
		if c == ' ' || c == '\t' || c == '|' || c == ';' || c == '(' {
			break
		}
		start--
	}
	word := ctx.Line[start:ctx.CursorPos]
	if strings.HasPrefix(word, "#") {
		return word, start
	}
	return "", 0
}

func isHashKeyPosition(ht *syntax.HashtableLit, node syntax.Node) bool {
	for _, entry := range ht.Entries {
		if entry.Key == node {
			return true
		}
		if entry == node {
			return true
		}
	}
	return false
}

// runHelper executes a read-only helper command against the live session,
// treating any failure as "no results".
func (e *Engine) runHelper(command string, args map[string]interface{}) []interface{} {
	if e.host == nil {
		return nil
	}
	start := time.Now()
	out, err := e.host.Run(command, args)
	if err != nil {
		e.log.Debug().Str("helper", command).Err(err).Msg("helper command failed")
		return nil
	}
	e.log.Debug().Str("helper", command).Int("objects", len(out)).Dur("elapsed", time.Since(start)).Msg("helper command")
	return out
}
