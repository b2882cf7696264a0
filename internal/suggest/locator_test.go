package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/session"
)

func locatorEngine(t *testing.T) *Engine {
	t.Helper()
	s := session.New()
	session.RegisterBuiltins(s)
	return NewEngine(Config{Host: s})
}

func TestLocateArgument_NamedValue(t *testing.T) {
	e := locatorEngine(t)
	line := "Get-Process -Name ngi"
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.Equal(t, "Name", loc.ParameterName)
	assert.False(t, loc.Positional)
	require.NotNil(t, loc.Parameter)
	assert.Equal(t, "Name", loc.Parameter.Name)
}

func TestLocateArgument_PendingNamedParameter(t *testing.T) {
	e := locatorEngine(t)
	line := "Get-Process -Name "
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.Equal(t, "Name", loc.ParameterName)
	require.NotNil(t, loc.Parameter)
}

func TestLocateArgument_ColonAttachedParameter(t *testing.T) {
	e := locatorEngine(t)
	line := "Get-Process -Name:ngi"
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.Equal(t, "Name", loc.ParameterName)
}

func TestLocateArgument_PositionalResolvesDeclared(t *testing.T) {
	e := locatorEngine(t)
	line := "Get-Process ngi"
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.True(t, loc.Positional)
	assert.Equal(t, 0, loc.Position)
	require.NotNil(t, loc.Parameter)
	assert.Equal(t, "Name", loc.Parameter.Name)
}

func TestLocateArgument_SecondPositionalSlot(t *testing.T) {
	e := locatorEngine(t)
	line := "Copy-Item src.txt dst"
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.True(t, loc.Positional)
	assert.Equal(t, 1, loc.Position)
	require.NotNil(t, loc.Parameter)
	assert.Equal(t, "Destination", loc.Parameter.Name)
}

func TestLocateArgument_TrailingWhitespaceKeepsCommand(t *testing.T) {
	e := locatorEngine(t)
	line := "Get-Process -Id 10 "
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.True(t, loc.Positional)
}

func TestLocateArgument_FreshPositionalSlot(t *testing.T) {
	e := locatorEngine(t)
	line := "Stop-Process "
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.True(t, loc.Positional)
	assert.Equal(t, 0, loc.Position)
}

func TestLocateArgument_UnknownCommandStillLocates(t *testing.T) {
	e := locatorEngine(t)
	line := "Frobnicate-Widget value"
	ctx := testContext(t, line, len(line), e.host)

	loc := e.locateArgument(ctx)
	require.NotNil(t, loc)
	assert.Nil(t, loc.Parameter)
	assert.True(t, loc.Positional)
}

func TestLocateArgument_NoCommand(t *testing.T) {
	e := locatorEngine(t)
	ctx := testContext(t, "$x", 2, e.host)
	assert.Nil(t, e.locateArgument(ctx))
}
