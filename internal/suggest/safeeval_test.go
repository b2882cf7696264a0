package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
)

func TestIsSafeExpr(t *testing.T) {
	str := &syntax.StringLit{Value: "x"}
	num := &syntax.NumberLit{Raw: "1"}

	tests := []struct {
		name string
		node syntax.Node
		want bool
	}{
		{"string literal", str, true},
		{"variable read", &syntax.VariableExpr{Name: "x"}, true},
		{"array of literals", &syntax.ArrayLit{Elements: []syntax.Node{str, num}}, true},
		{"binary over literals", &syntax.BinaryExpr{Op: "+", LHS: num, RHS: num}, true},
		{"paren", &syntax.ParenExpr{Inner: num}, true},
		{"index", &syntax.IndexExpr{Target: str, Index: num}, true},
		{"member read on safe target", &syntax.MemberExpr{Target: str, Member: str}, true},
		{"command", &syntax.Command{Name: "Remove-Item"}, false},
		{"array holding a command", &syntax.ArrayLit{Elements: []syntax.Node{&syntax.Command{}}}, false},
		{"assignment", &syntax.AssignmentStmt{}, false},
		{"empty paren", &syntax.ParenExpr{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSafeExpr(tt.node))
		})
	}
}

func TestSafeEvaluate_Literals(t *testing.T) {
	e := NewEngine(Config{})
	ctx := &Context{}

	v, ok := e.safeEvaluate(ctx, &syntax.StringLit{Value: "hello"})
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	v, ok = e.safeEvaluate(ctx, &syntax.NumberLit{Raw: "42"})
	require.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok = e.safeEvaluate(ctx, &syntax.VariableExpr{Name: "true"})
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestSafeEvaluate_RefusesUnsafe(t *testing.T) {
	e := NewEngine(Config{})
	_, ok := e.safeEvaluate(&Context{}, &syntax.Command{Name: "Stop-Computer"})
	assert.False(t, ok)
	_, ok = e.safeEvaluate(&Context{}, nil)
	assert.False(t, ok)
}

func TestSafeEvaluate_SessionVariable(t *testing.T) {
	s := session.New()
	s.SetVariable("answer", 42)
	e := NewEngine(Config{Host: s})

	v, ok := e.safeEvaluate(&Context{}, &syntax.VariableExpr{Name: "answer"})
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = e.safeEvaluate(&Context{}, &syntax.VariableExpr{Name: "nosuch"})
	assert.False(t, ok)
}

func TestSafeEvaluate_Arithmetic(t *testing.T) {
	e := NewEngine(Config{})
	two := &syntax.NumberLit{Raw: "2"}
	three := &syntax.NumberLit{Raw: "3"}

	v, ok := e.safeEvaluate(&Context{}, &syntax.BinaryExpr{Op: "+", LHS: two, RHS: three})
	require.True(t, ok)
	assert.Equal(t, 5, v)

	v, ok = e.safeEvaluate(&Context{}, &syntax.BinaryExpr{Op: "*", LHS: two, RHS: three})
	require.True(t, ok)
	assert.Equal(t, 6, v)

	v, ok = e.safeEvaluate(&Context{}, &syntax.BinaryExpr{
		Op:  "+",
		LHS: &syntax.StringLit{Value: "n="},
		RHS: two,
	})
	require.True(t, ok)
	assert.Equal(t, "n=2", v)
}

func TestSafeEvaluate_Indexing(t *testing.T) {
	e := NewEngine(Config{})
	arr := &syntax.ArrayLit{Elements: []syntax.Node{
		&syntax.StringLit{Value: "a"},
		&syntax.StringLit{Value: "b"},
	}}

	v, ok := e.safeEvaluate(&Context{}, &syntax.IndexExpr{Target: arr, Index: &syntax.NumberLit{Raw: "1"}})
	require.True(t, ok)
	assert.Equal(t, "b", v)

	// negative indexes count from the end
	v, ok = e.safeEvaluate(&Context{}, &syntax.IndexExpr{Target: arr, Index: &syntax.NumberLit{Raw: "-1"}})
	require.True(t, ok)
	assert.Equal(t, "b", v)

	// out of range evaluates to null rather than failing
	v, ok = e.safeEvaluate(&Context{}, &syntax.IndexExpr{Target: arr, Index: &syntax.NumberLit{Raw: "9"}})
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestSafeEvaluate_Hashtable(t *testing.T) {
	e := NewEngine(Config{})
	ht := &syntax.HashtableLit{Entries: []*syntax.HashEntry{
		{Key: &syntax.StringLit{Value: "Color"}, Value: &syntax.StringLit{Value: "red"}},
	}}

	v, ok := e.safeEvaluate(&Context{}, ht)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"Color": "red"}, v)

	v, ok = e.safeEvaluate(&Context{}, &syntax.IndexExpr{Target: ht, Index: &syntax.StringLit{Value: "Color"}})
	require.True(t, ok)
	assert.Equal(t, "red", v)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want interface{}
		ok   bool
	}{
		{"42", 42, true},
		{"-7", -7, true},
		{"3.5", 3.5, true},
		{"0x1F", 31, true},
		{"10l", 10, true},
		{"abc", nil, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "x", stringify("x"))
	assert.Equal(t, "12", stringify(12))
	assert.Equal(t, "True", stringify(true))
	assert.Equal(t, "", stringify(nil))
}

func TestLiteralValue(t *testing.T) {
	assert.Equal(t, "x", literalValue(&syntax.StringLit{Value: "x"}))
	assert.Equal(t, 3, literalValue(&syntax.NumberLit{Raw: "3"}))
	assert.Equal(t, true, literalValue(&syntax.VariableExpr{Name: "true"}))
	assert.Equal(t, "$name", literalValue(&syntax.VariableExpr{Name: "name"}))
	assert.Equal(t,
		[]interface{}{"a", 1},
		literalValue(&syntax.ArrayLit{Elements: []syntax.Node{
			&syntax.StringLit{Value: "a"},
			&syntax.NumberLit{Raw: "1"},
		}}))
}
