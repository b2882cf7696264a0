package suggest

import (
	"strconv"
	"strings"

	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
)

// isSafeExpr reports whether evaluating the expression can have side
// effects. Only a closed set of node kinds passes: literals, variable
// reads, collections of safe elements, operators over safe operands and
// grouping. Anything involving a command, an assignment, a method call or
// an unknown node kind is unsafe and is never evaluated.
func isSafeExpr(n syntax.Node) bool {
	switch v := n.(type) {
	case *syntax.StringLit, *syntax.NumberLit, *syntax.VariableExpr,
		*syntax.TypeLit, *syntax.ScriptBlockExpr:
		return true
	case *syntax.ArrayLit:
		for _, el := range v.Elements {
			if !isSafeExpr(el) {
				return false
			}
		}
		return true
	case *syntax.HashtableLit:
		for _, entry := range v.Entries {
			if !isSafeExpr(entry.Key) || entry.Value == nil || !isSafeExpr(entry.Value) {
				return false
			}
		}
		return true
	case *syntax.ParenExpr:
		return v.Inner != nil && isSafeExpr(v.Inner)
	case *syntax.UnaryExpr:
		return v.Operand != nil && isSafeExpr(v.Operand)
	case *syntax.BinaryExpr:
		return v.LHS != nil && isSafeExpr(v.LHS) && v.RHS != nil && isSafeExpr(v.RHS)
	case *syntax.IndexExpr:
		return v.Target != nil && isSafeExpr(v.Target) && v.Index != nil && isSafeExpr(v.Index)
	case *syntax.ConvertExpr:
		return v.Operand != nil && isSafeExpr(v.Operand)
	case *syntax.MemberExpr:
		// property reads on safe targets stay safe; invocation does not
		// appear here because calls parse as commands
		return v.Target != nil && isSafeExpr(v.Target)
	default:
		return false
	}
}

// safeEvaluate computes the value of a safe expression against the live
// session. ok is false when the expression is unsafe or its value cannot
// be determined, which callers treat as "fall back to static inference".
func (e *Engine) safeEvaluate(ctx *Context, n syntax.Node) (interface{}, bool) {
	if n == nil || !isSafeExpr(n) {
		return nil, false
	}
	return e.eval(ctx, n)
}

func (e *Engine) eval(ctx *Context, n syntax.Node) (interface{}, bool) {
	switch v := n.(type) {
	case *syntax.StringLit:
		return v.Value, true
	case *syntax.NumberLit:
		return parseNumber(v.Raw)
	case *syntax.VariableExpr:
		return e.variableValue(ctx, v.Name)
	case *syntax.ParenExpr:
		return e.eval(ctx, v.Inner)
	case *syntax.ConvertExpr:
		return e.eval(ctx, v.Operand)
	case *syntax.ArrayLit:
		out := make([]interface{}, 0, len(v.Elements))
		for _, el := range v.Elements {
			val, ok := e.eval(ctx, el)
			if !ok {
				return nil, false
			}
			out = append(out, val)
		}
		return out, true
	case *syntax.HashtableLit:
		out := make(map[string]interface{}, len(v.Entries))
		for _, entry := range v.Entries {
			key := syntax.StringValue(entry.Key)
			if key == "" {
				return nil, false
			}
			val, ok := e.eval(ctx, entry.Value)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	case *syntax.UnaryExpr:
		return e.evalUnary(ctx, v)
	case *syntax.BinaryExpr:
		return e.evalBinary(ctx, v)
	case *syntax.IndexExpr:
		return e.evalIndex(ctx, v)
	case *syntax.MemberExpr:
		return nil, false // property values come from reflection, not eval
	default:
		return nil, false
	}
}

func (e *Engine) variableValue(ctx *Context, name string) (interface{}, bool) {
	lower := strings.ToLower(name)
	switch lower {
	case "null":
		return nil, true
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if rest, ok := strings.CutPrefix(lower, "env:"); ok {
		for _, obj := range e.runHelper("get-environment", nil) {
			if v, ok := obj.(*session.Variable); ok && strings.EqualFold(v.Name, rest) {
				return v.Value, true
			}
		}
		return nil, false
	}
	for _, obj := range e.runHelper("get-variable", map[string]interface{}{"Name": name}) {
		if v, ok := obj.(*session.Variable); ok && strings.EqualFold(v.Name, name) {
			return v.Value, true
		}
	}
	return nil, false
}

func (e *Engine) evalUnary(ctx *Context, v *syntax.UnaryExpr) (interface{}, bool) {
	val, ok := e.eval(ctx, v.Operand)
	if !ok {
		return nil, false
	}
	switch v.Op {
	case "-":
		switch x := val.(type) {
		case int:
			return -x, true
		case float64:
			return -x, true
		}
	case "+":
		return val, true
	case "!", "-not":
		b, ok := val.(bool)
		if ok {
			return !b, true
		}
	}
	return nil, false
}

func (e *Engine) evalBinary(ctx *Context, v *syntax.BinaryExpr) (interface{}, bool) {
	left, ok := e.eval(ctx, v.LHS)
	if !ok {
		return nil, false
	}
	right, ok := e.eval(ctx, v.RHS)
	if !ok {
		return nil, false
	}
	switch v.Op {
	case "+":
		if ls, ok := left.(string); ok {
			return ls + stringify(right), true
		}
		if li, ok := left.(int); ok {
			if ri, ok := right.(int); ok {
				return li + ri, true
			}
		}
	case "*":
		if li, ok := left.(int); ok {
			if ri, ok := right.(int); ok {
				return li * ri, true
			}
		}
	}
	return nil, false
}

func (e *Engine) evalIndex(ctx *Context, v *syntax.IndexExpr) (interface{}, bool) {
	target, ok := e.eval(ctx, v.Target)
	if !ok {
		return nil, false
	}
	index, ok := e.eval(ctx, v.Index)
	if !ok {
		return nil, false
	}
	switch t := target.(type) {
	case []interface{}:
		i, ok := index.(int)
		if !ok {
			return nil, false
		}
		if i < 0 {
			i += len(t)
		}
		if i < 0 || i >= len(t) {
			return nil, true // out of range indexes to $null, not an error
		}
		return t[i], true
	case map[string]interface{}:
		key, ok := index.(string)
		if !ok {
			return nil, false
		}
		val, present := t[key]
		if !present {
			return nil, true
		}
		return val, true
	case string:
		i, ok := index.(int)
		if !ok || i < 0 || i >= len(t) {
			return nil, false
		}
		return string(t[i]), true
	}
	return nil, false
}

// literalValue converts a literal AST node to its value without touching
// the session. Non-literal nodes map to their source-ish string form.
func literalValue(n syntax.Node) interface{} {
	switch v := n.(type) {
	case *syntax.StringLit:
		return v.Value
	case *syntax.NumberLit:
		if val, ok := parseNumber(v.Raw); ok {
			return val
		}
		return v.Raw
	case *syntax.VariableExpr:
		switch strings.ToLower(v.Name) {
		case "true":
			return true
		case "false":
			return false
		case "null":
			return nil
		}
		return "$" + v.Name
	case *syntax.ArrayLit:
		out := make([]interface{}, 0, len(v.Elements))
		for _, el := range v.Elements {
			out = append(out, literalValue(el))
		}
		return out
	default:
		return syntax.StringValue(n)
	}
}

func parseNumber(raw string) (interface{}, bool) {
	clean := strings.TrimSuffix(strings.ToLower(raw), "l")
	if strings.HasPrefix(clean, "0x") {
		i, err := strconv.ParseInt(clean[2:], 16, 64)
		if err != nil {
			return nil, false
		}
		return int(i), true
	}
	if i, err := strconv.Atoi(clean); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return f, true
	}
	return nil, false
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case nil:
		return ""
	}
	return ""
}
