package suggest

import (
	"reflect"
	"strings"

	"github.com/nacre-sh/nacre/internal/syntax"
)

// inferTypes statically infers the possible runtime types of an expression
// without evaluating it. Used when safe evaluation cannot produce a live
// value, most importantly for $_ inside pipeline script blocks and for
// variables assigned earlier on the line.
func (e *Engine) inferTypes(ctx *Context, n syntax.Node) []reflect.Type {
	switch v := n.(type) {
	case *syntax.ConvertExpr:
		if t := e.catalog.ResolveType(v.Type.Name); t != nil {
			return []reflect.Type{t}
		}
		return nil
	case *syntax.StringLit:
		return []reflect.Type{reflect.TypeOf("")}
	case *syntax.NumberLit:
		if val, ok := parseNumber(v.Raw); ok {
			return []reflect.Type{reflect.TypeOf(val)}
		}
		return nil
	case *syntax.ArrayLit:
		return []reflect.Type{reflect.TypeOf([]interface{}{})}
	case *syntax.HashtableLit:
		return []reflect.Type{reflect.TypeOf(map[string]interface{}{})}
	case *syntax.ParenExpr:
		return e.inferTypes(ctx, v.Inner)
	case *syntax.VariableExpr:
		return e.inferVariable(ctx, v)
	case *syntax.MemberExpr:
		return e.inferMemberResult(ctx, v)
	case *syntax.IndexExpr:
		for _, t := range e.inferTypes(ctx, v.Target) {
			if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
				return []reflect.Type{t.Elem()}
			}
			if t.Kind() == reflect.Map {
				return []reflect.Type{t.Elem()}
			}
		}
		return nil
	case *syntax.SubExpr:
		return e.inferPipelineOutput(lastPipeline(v.Block))
	}
	return nil
}

func (e *Engine) inferVariable(ctx *Context, v *syntax.VariableExpr) []reflect.Type {
	name := strings.ToLower(v.Name)
	if name == "_" || name == "psitem" {
		return e.inferPipelineItem(ctx, v)
	}
	// scan the script for assignments or casts that pin the variable's type
	var types []reflect.Type
	if ctx.parse != nil && ctx.parse.Root != nil {
		syntax.Walk(ctx.parse.Root, func(n syntax.Node) bool {
			assign, ok := n.(*syntax.AssignmentStmt)
			if !ok {
				return true
			}
			target := assign.Target
			if conv, ok := target.(*syntax.ConvertExpr); ok {
				target = conv.Operand
			}
			tv, ok := target.(*syntax.VariableExpr)
			if !ok || !strings.EqualFold(tv.Name, v.Name) {
				return true
			}
			if conv, ok := assign.Target.(*syntax.ConvertExpr); ok {
				if t := e.catalog.ResolveType(conv.Type.Name); t != nil {
					types = append(types, t)
					return true
				}
			}
			types = append(types, e.inferTypes(ctx, assign.Value)...)
			return true
		})
	}
	return dedupeTypes(types)
}

// inferPipelineItem resolves the element type of $_ from the output types
// of the pipeline stage feeding the enclosing script block.
func (e *Engine) inferPipelineItem(ctx *Context, v *syntax.VariableExpr) []reflect.Type {
	var block *syntax.ScriptBlockExpr
	var pipeline *syntax.Pipeline
	var blockOwner *syntax.Command
	for _, node := range ctx.RelatedAsts {
		switch n := node.(type) {
		case *syntax.ScriptBlockExpr:
			if block == nil {
				block = n
			}
		case *syntax.Command:
			if block != nil && blockOwner == nil && containsNode(n, block) {
				blockOwner = n
			}
		case *syntax.Pipeline:
			pipeline = n
		}
	}
	if pipeline == nil || blockOwner == nil {
		return nil
	}
	for i, el := range pipeline.Elements {
		if el != syntax.Node(blockOwner) || i == 0 {
			continue
		}
		if prev, ok := pipeline.Elements[i-1].(*syntax.Command); ok {
			return e.inferCommandOutput(prev)
		}
		return e.inferTypes(ctx, pipeline.Elements[i-1])
	}
	return nil
}

func (e *Engine) inferCommandOutput(cmd *syntax.Command) []reflect.Type {
	if e.resolver == nil {
		return nil
	}
	info := e.resolver(cmd.Name)
	if info == nil {
		return nil
	}
	var types []reflect.Type
	for _, out := range info.OutputTypes {
		if t := e.catalog.ResolveType(out); t != nil {
			types = append(types, t)
		}
	}
	return types
}

// inferMemberResult resolves the type of a property access so chained
// member completion works one level deep without evaluation.
func (e *Engine) inferMemberResult(ctx *Context, m *syntax.MemberExpr) []reflect.Type {
	memberName := syntax.StringValue(m.Member)
	if memberName == "" {
		return nil
	}
	var out []reflect.Type
	for _, t := range e.inferTypes(ctx, m.Target) {
		t = derefType(t)
		if t.Kind() != reflect.Struct {
			continue
		}
		if f, ok := t.FieldByName(memberName); ok {
			out = append(out, f.Type)
		}
	}
	return dedupeTypes(out)
}

func (e *Engine) inferPipelineOutput(p *syntax.Pipeline) []reflect.Type {
	if p == nil || len(p.Elements) == 0 {
		return nil
	}
	last, ok := p.Elements[len(p.Elements)-1].(*syntax.Command)
	if !ok {
		return nil
	}
	return e.inferCommandOutput(last)
}

func lastPipeline(block *syntax.ScriptBlock) *syntax.Pipeline {
	if block == nil {
		return nil
	}
	for i := len(block.Statements) - 1; i >= 0; i-- {
		if p, ok := block.Statements[i].(*syntax.Pipeline); ok {
			return p
		}
	}
	return nil
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func dedupeTypes(types []reflect.Type) []reflect.Type {
	seen := map[reflect.Type]bool{}
	var out []reflect.Type
	for _, t := range types {
		if t == nil || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// outputTypeNames lists the declared output type names of the previous
// pipeline stage even when no live Go type is registered for them, which
// still lets member completion consult CIM class metadata by name.
func (e *Engine) outputTypeNames(cmd *syntax.Command) []string {
	if e.resolver == nil || cmd == nil {
		return nil
	}
	info := e.resolver(cmd.Name)
	if info == nil {
		return nil
	}
	return info.OutputTypes
}
