package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{
			name:  "command-with-parameter",
			input: "Get-Process -Name nginx",
			want:  []TokenKind{TokIdentifier, TokParameter, TokIdentifier, TokEOF},
		},
		{
			name:  "pipeline",
			input: "a | b",
			want:  []TokenKind{TokIdentifier, TokPipe, TokIdentifier, TokEOF},
		},
		{
			name:  "variable",
			input: "$name",
			want:  []TokenKind{TokVariable, TokEOF},
		},
		{
			name:  "scoped-variable",
			input: "$env:PATH",
			want:  []TokenKind{TokVariable, TokEOF},
		},
		{
			name:  "braced-variable",
			input: "${my var}",
			want:  []TokenKind{TokVariable, TokEOF},
		},
		{
			name:  "member-access",
			input: "$x.Name",
			want:  []TokenKind{TokVariable, TokDot, TokIdentifier, TokEOF},
		},
		{
			name:  "static-access",
			input: "[math]::Pi",
			want:  []TokenKind{TokLBracket, TokIdentifier, TokRBracket, TokStaticOp, TokIdentifier, TokEOF},
		},
		{
			name:  "single-quoted-string",
			input: "'hello world'",
			want:  []TokenKind{TokString, TokEOF},
		},
		{
			name:  "unterminated-string",
			input: "\"half",
			want:  []TokenKind{TokString, TokEOF},
		},
		{
			name:  "number",
			input: "42",
			want:  []TokenKind{TokNumber, TokEOF},
		},
		{
			name:  "hashtable-open",
			input: "@{Name",
			want:  []TokenKind{TokAtBrace, TokIdentifier, TokEOF},
		},
		{
			name:  "subexpression",
			input: "$(1)",
			want:  []TokenKind{TokDollarParen, TokNumber, TokRParen, TokEOF},
		},
		{
			name:  "comment-is-skipped",
			input: "Get-Date # trailing note",
			want:  []TokenKind{TokIdentifier, TokEOF},
		},
		{
			name:  "comparison-operator",
			input: "1 -eq 2",
			want:  []TokenKind{TokNumber, TokParameter, TokNumber, TokEOF},
		},
		{
			name:  "ampersand-call",
			input: "& 'my tool'",
			want:  []TokenKind{TokAmpersand, TokString, TokEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(tokenize(tt.input)))
		})
	}
}

func TestTokenize_DottedWordStaysWhole(t *testing.T) {
	toks := tokenize("System.Collections.Generic")
	require.Len(t, toks, 2)
	assert.Equal(t, TokIdentifier, toks[0].Kind)
	assert.Equal(t, "System.Collections.Generic", toks[0].Text)
}

func TestTokenize_DotAfterValueIsMemberOp(t *testing.T) {
	toks := tokenize("$x.")
	require.Len(t, toks, 3)
	assert.Equal(t, TokVariable, toks[0].Kind)
	assert.Equal(t, TokDot, toks[1].Kind)
}

func TestTokenize_DashAfterValueIsSubtraction(t *testing.T) {
	toks := tokenize("(1)-2")
	// ) then - then 2: the dash is adjacent to a value, so it is an operator
	require.GreaterOrEqual(t, len(toks), 5)
	assert.Equal(t, TokOperator, toks[3].Kind)
}

func TestTokenize_ParameterWithColon(t *testing.T) {
	toks := tokenize("-Name:")
	require.Len(t, toks, 2)
	assert.Equal(t, TokParameter, toks[0].Kind)
	assert.Equal(t, "-Name:", toks[0].Text)
}

func parseLine(t *testing.T, input string) *ParseResult {
	t.Helper()
	res := NewLineParser().Parse(input)
	require.NotNil(t, res.Root)
	return res
}

func firstStatement(t *testing.T, input string) Node {
	t.Helper()
	res := parseLine(t, input)
	require.NotEmpty(t, res.Root.Statements)
	return res.Root.Statements[0]
}

func TestParse_SimpleCommand(t *testing.T) {
	cmd, ok := firstStatement(t, "Get-Process -Name nginx extra").(*Command)
	require.True(t, ok)
	assert.Equal(t, "Get-Process", cmd.Name)
	require.Len(t, cmd.Args, 3)

	param, ok := cmd.Args[0].(*CommandParameter)
	require.True(t, ok)
	assert.Equal(t, "Name", param.Name)
	assert.False(t, param.HasColon)
}

func TestParse_ColonAttachedArgument(t *testing.T) {
	cmd, ok := firstStatement(t, "Get-ChildItem -Depth:2").(*Command)
	require.True(t, ok)
	require.Len(t, cmd.Args, 1)

	param := cmd.Args[0].(*CommandParameter)
	assert.Equal(t, "Depth", param.Name)
	assert.True(t, param.HasColon)
	require.NotNil(t, param.Argument)
	num, ok := param.Argument.(*NumberLit)
	require.True(t, ok)
	assert.Equal(t, int64(2), num.Int)
}

func TestParse_Pipeline(t *testing.T) {
	pipe, ok := firstStatement(t, "Get-Process | Sort-Object CPU | Select-Object Name").(*Pipeline)
	require.True(t, ok)
	require.Len(t, pipe.Elements, 3)
	assert.Equal(t, "Get-Process", pipe.Elements[0].(*Command).Name)
	assert.Equal(t, "Select-Object", pipe.Elements[2].(*Command).Name)
}

func TestParse_Assignment(t *testing.T) {
	stmt, ok := firstStatement(t, "$count = 5").(*AssignmentStmt)
	require.True(t, ok)
	v, ok := stmt.Target.(*VariableExpr)
	require.True(t, ok)
	assert.Equal(t, "count", v.Name)
	assert.Equal(t, "=", stmt.Op)
}

func TestParse_TypedAssignment(t *testing.T) {
	stmt, ok := firstStatement(t, "[int]$n = '5'").(*AssignmentStmt)
	require.True(t, ok)
	conv, ok := stmt.Target.(*ConvertExpr)
	require.True(t, ok)
	assert.Equal(t, "int", conv.Type.Name)
}

func TestParse_MemberChain(t *testing.T) {
	expr := firstStatement(t, "$proc.Modules.Count")
	outer, ok := expr.(*MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "Count", StringValue(outer.Member))

	inner, ok := outer.Target.(*MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "Modules", StringValue(inner.Member))
}

func TestParse_OpenMemberAccess(t *testing.T) {
	expr := firstStatement(t, "$x.")
	m, ok := expr.(*MemberExpr)
	require.True(t, ok)
	require.NotNil(t, m.Member)
	assert.Empty(t, StringValue(m.Member))
}

func TestParse_StaticMember(t *testing.T) {
	expr := firstStatement(t, "[math]::Sqrt")
	m, ok := expr.(*MemberExpr)
	require.True(t, ok)
	assert.True(t, m.Static)
	assert.Equal(t, "Sqrt", StringValue(m.Member))
}

func TestParse_TypeLitAndConvert(t *testing.T) {
	lit, ok := firstStatement(t, "[datetime]").(*TypeLit)
	require.True(t, ok)
	assert.Equal(t, "datetime", lit.Type.Name)

	conv, ok := firstStatement(t, "[int]'42'").(*ConvertExpr)
	require.True(t, ok)
	assert.Equal(t, "int", conv.Type.Name)
}

func TestParse_GenericTypeName(t *testing.T) {
	lit, ok := firstStatement(t, "[System.Collections.Generic.List[string]]").(*TypeLit)
	require.True(t, ok)
	assert.Equal(t, "System.Collections.Generic.List", lit.Type.Name)
	require.Len(t, lit.Type.GenericArgs, 1)
	assert.Equal(t, "string", lit.Type.GenericArgs[0].Name)
}

func TestParse_UnclosedTypeLitRecovers(t *testing.T) {
	res := parseLine(t, "[strin")
	require.NotEmpty(t, res.Root.Statements)
	lit, ok := res.Root.Statements[0].(*TypeLit)
	require.True(t, ok)
	assert.Equal(t, "strin", lit.Type.Name)
	assert.NotEmpty(t, res.Errors)
}

func TestParse_Hashtable(t *testing.T) {
	ht, ok := firstStatement(t, "@{Name = 'x'; Expression = 1}").(*HashtableLit)
	require.True(t, ok)
	require.Len(t, ht.Entries, 2)
	assert.Equal(t, "Name", StringValue(ht.Entries[0].Key))
	assert.Equal(t, "Expression", StringValue(ht.Entries[1].Key))
}

func TestParse_UsingNamespace(t *testing.T) {
	res := parseLine(t, "using namespace System.IO")
	require.Len(t, res.Root.Usings, 1)
	assert.Equal(t, "System.IO", res.Root.Usings[0].Namespace)
}

func TestParse_ScriptBlockArgument(t *testing.T) {
	cmd, ok := firstStatement(t, "Where-Object { $_.Name }").(*Command)
	require.True(t, ok)
	require.Len(t, cmd.Args, 1)
	sb, ok := cmd.Args[0].(*ScriptBlockExpr)
	require.True(t, ok)
	require.NotEmpty(t, sb.Body.Statements)
}

func TestParse_BinaryExpression(t *testing.T) {
	bin, ok := firstStatement(t, "1 -eq 2").(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "-eq", bin.Op)
	_, ok = bin.LHS.(*NumberLit)
	assert.True(t, ok)
}

func TestParse_DashInArgumentPositionIsParameter(t *testing.T) {
	cmd, ok := firstStatement(t, "Compare-Object a -eq").(*Command)
	require.True(t, ok)
	// inside a command, -eq binds as a parameter, not an operator
	last := cmd.Args[len(cmd.Args)-1]
	param, ok := last.(*CommandParameter)
	require.True(t, ok)
	assert.Equal(t, "eq", param.Name)
}

func TestParse_FunctionDefinition(t *testing.T) {
	fn, ok := firstStatement(t, "function Get-Widget { param($Name) $Name }").(*FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "Get-Widget", fn.Name)
	require.Len(t, fn.Body.Params, 1)
	assert.Equal(t, "Name", fn.Body.Params[0].Name)
}

func TestEnclosingNodes_InnermostFirst(t *testing.T) {
	input := "Get-Process | Where-Object { $_.Name }"
	res := parseLine(t, input)
	cursor := len(input) - len(" }") // end of "Name"
	chain := EnclosingNodes(res.Root, cursor)
	require.NotEmpty(t, chain)

	_, ok := chain[0].(*StringLit)
	assert.True(t, ok, "innermost node should be the member name, got %T", chain[0])

	_, ok = chain[len(chain)-1].(*ScriptBlock)
	assert.True(t, ok, "outermost node should be the root block")
}

func TestTokenAtAndBefore(t *testing.T) {
	input := "Get-Process -Name "
	toks := tokenize(input)

	at := TokenAt(toks, 7)
	require.NotNil(t, at)
	assert.Equal(t, "Get-Process", at.Text)

	before := TokenBefore(toks, len(input))
	require.NotNil(t, before)
	assert.Equal(t, TokParameter, before.Kind)
}

func TestWalk_Prunes(t *testing.T) {
	res := parseLine(t, "Get-Process -Name nginx")
	var visited int
	Walk(res.Root, func(n Node) bool {
		visited++
		_, isCommand := n.(*Command)
		return !isCommand
	})
	// root, pipeline-less command: children of the command are pruned
	assert.Equal(t, 2, visited)
}
