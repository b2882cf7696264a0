package suggest

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/syntax"
	"github.com/nacre-sh/nacre/internal/typecat"
)

func TestDerefType(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(widget{}), derefType(reflect.TypeOf(&widget{})))
	assert.Equal(t, reflect.TypeOf(widget{}), derefType(reflect.TypeOf(widget{})))
	assert.Nil(t, derefType(nil))
}

func TestDedupeTypes(t *testing.T) {
	str := reflect.TypeOf("")
	num := reflect.TypeOf(0)
	out := dedupeTypes([]reflect.Type{str, num, str, nil})
	assert.Equal(t, []reflect.Type{str, num}, out)
}

func TestInferTypes_Literals(t *testing.T) {
	e := NewEngine(Config{})
	ctx := &Context{}

	got := e.inferTypes(ctx, &syntax.StringLit{Value: "x"})
	require.Len(t, got, 1)
	assert.Equal(t, reflect.String, got[0].Kind())

	got = e.inferTypes(ctx, &syntax.NumberLit{Raw: "3"})
	require.Len(t, got, 1)
	assert.Equal(t, reflect.Int, got[0].Kind())

	got = e.inferTypes(ctx, &syntax.HashtableLit{})
	require.Len(t, got, 1)
	assert.Equal(t, reflect.Map, got[0].Kind())
}

func TestInferTypes_ConvertExprUsesCatalog(t *testing.T) {
	catalog := typecat.New()
	catalog.RegisterType("Nacre.Widget", reflect.TypeOf(widget{}))
	e := NewEngine(Config{Catalog: catalog})

	got := e.inferTypes(&Context{}, &syntax.ConvertExpr{
		Type:    &syntax.TypeName{Name: "Nacre.Widget"},
		Operand: &syntax.HashtableLit{},
	})
	require.Len(t, got, 1)
	assert.Equal(t, reflect.TypeOf(widget{}), got[0])
}

func TestInferTypes_TypedAssignmentPinsVariable(t *testing.T) {
	catalog := typecat.New()
	catalog.RegisterType("Nacre.Widget", reflect.TypeOf(widget{}))
	s := session.New()
	e := NewEngine(Config{Host: s, Catalog: catalog})

	line := "[Nacre.Widget]$w = Get-Widget; $w"
	ctx := testContext(t, line, len(line), s)
	got := e.inferTypes(ctx, &syntax.VariableExpr{Name: "w"})
	require.Len(t, got, 1)
	assert.Equal(t, reflect.TypeOf(widget{}), got[0])
}

func TestInferTypes_AssignmentFromLiteral(t *testing.T) {
	s := session.New()
	e := NewEngine(Config{Host: s})

	line := `$name = "abc"; $name`
	ctx := testContext(t, line, len(line), s)
	got := e.inferTypes(ctx, &syntax.VariableExpr{Name: "name"})
	require.Len(t, got, 1)
	assert.Equal(t, reflect.String, got[0].Kind())
}

func TestInferTypes_PipelineItemFromOutputTypes(t *testing.T) {
	catalog := typecat.New()
	catalog.RegisterType("System.Diagnostics.Process", reflect.TypeOf(session.Process{}))
	s := session.New()
	session.RegisterBuiltins(s)
	e := NewEngine(Config{Host: s, Catalog: catalog})

	line := "Get-Process | Where-Object { $_ }"
	cursor := len("Get-Process | Where-Object { $_")
	ctx := testContext(t, line, cursor, s)
	v := &syntax.VariableExpr{Name: "_", Pos: syntax.Span{Start: cursor - 2, End: cursor}}
	got := e.inferTypes(ctx, v)
	require.NotEmpty(t, got)
	assert.Equal(t, reflect.TypeOf(session.Process{}), got[0])
}

func TestInferTypes_MemberResult(t *testing.T) {
	catalog := typecat.New()
	catalog.RegisterType("Nacre.Widget", reflect.TypeOf(widget{}))
	s := session.New()
	e := NewEngine(Config{Host: s, Catalog: catalog})

	line := "[Nacre.Widget]$w = x; $w"
	ctx := testContext(t, line, len(line), s)
	m := &syntax.MemberExpr{
		Target: &syntax.VariableExpr{Name: "w"},
		Member: &syntax.StringLit{Value: "Name"},
	}
	got := e.inferMemberResult(ctx, m)
	require.Len(t, got, 1)
	assert.Equal(t, reflect.String, got[0].Kind())
}
