package suggest

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/session"
	"github.com/nacre-sh/nacre/internal/typecat"
)

func TestCompleteCommand_NounFragmentMatches(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Process")
	items := listItems(results)
	assert.Contains(t, items, "Get-Process")
	assert.Contains(t, items, "Stop-Process")
	assert.NotContains(t, items, "Get-Service")
}

func TestCompleteCommand_CaseInsensitive(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "get-pro")
	assert.Contains(t, listItems(results), "Get-Process")
}

func TestCompleteCommand_AliasesIncluded(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "gps")
	items := listItems(results)
	assert.Contains(t, items, "gps")
}

func TestCompleteParameter_ExcludesUsed(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Process -Name x -")
	items := listItems(results)
	assert.NotContains(t, items, "Name")
	assert.Contains(t, items, "IncludeUserName")
}

func TestCompleteParameter_SetRestriction(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Process -Id 1 -")
	items := listItems(results)
	assert.NotContains(t, items, "Name", "binding -Id rules out the Name set")
	assert.Contains(t, items, "Verbose", "common parameters survive set restriction")
}

func TestCompleteParameter_CommonParameters(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Process -Verb")
	items := listItems(results)
	assert.Contains(t, items, "Verbose")
}

func TestCompleteModule_Wildcard(t *testing.T) {
	e := valuesEngine(t)
	ctx := &Context{Host: e.host, WordToComplete: "PS*Line"}
	results := e.CompleteModule(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, "PSReadLine", results[0].CompletionText)
}

func TestCompleteHashtableKey_CalculatedProperty(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Select-Object -Property @{ ")
	items := listItems(results)
	assert.Contains(t, items, "Name")
	assert.Contains(t, items, "Expression")
}

func TestCompleteHashtableKey_ExcludesUsedKeys(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Select-Object -Property @{ Name = 'n'; ")
	items := listItems(results)
	assert.NotContains(t, items, "Name")
	assert.Contains(t, items, "Expression")
}

func TestCompleteHashtableKey_TypedPrefix(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Select-Object -Property @{N")
	items := listItems(results)
	assert.Contains(t, items, "Name")
	assert.NotContains(t, items, "Expression")
}

func TestCompleteHashtableKey_CastToType(t *testing.T) {
	catalog := typecat.New()
	catalog.RegisterType("Nacre.Widget", reflect.TypeOf(widget{}))
	s := session.New()
	session.RegisterBuiltins(s)
	e := NewEngine(Config{Host: s, Catalog: catalog})

	results := completeLine(e, "[Nacre.Widget]@{ ")
	items := listItems(results)
	assert.Contains(t, items, "Name")
	assert.Contains(t, items, "Count")
}

func TestSettablePropertyNames(t *testing.T) {
	names := settablePropertyNames(reflect.TypeOf(&widget{}))
	assert.Equal(t, []string{"Name", "Count"}, names)
	assert.Nil(t, settablePropertyNames(reflect.TypeOf("")))
	assert.Nil(t, settablePropertyNames(nil))
}
