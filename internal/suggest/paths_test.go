package suggest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/session"
)

func TestSplitDriveWord(t *testing.T) {
	tests := []struct {
		word      string
		drive     string
		rest      string
		recognize bool
	}{
		{"env:PA", "env", "PA", true},
		{"variable:fav", "variable", "fav", true},
		{"C:\\temp", "", "", false},
		{"./x:y", "", "", false},
		{"plain", "", "", false},
	}
	for _, tt := range tests {
		drive, rest, ok := splitDriveWord(tt.word)
		assert.Equal(t, tt.recognize, ok, tt.word)
		assert.Equal(t, tt.drive, drive, tt.word)
		assert.Equal(t, tt.rest, rest, tt.word)
	}
}

func TestSplitPathWord(t *testing.T) {
	dir, leaf := splitPathWord("src/main")
	assert.Equal(t, "src/", dir)
	assert.Equal(t, "main", leaf)

	dir, leaf = splitPathWord("main")
	assert.Equal(t, "", dir)
	assert.Equal(t, "main", leaf)
}

func TestEscapeWildcards(t *testing.T) {
	assert.Equal(t, "plain.txt", escapeWildcards("plain.txt"))
	assert.Equal(t, "a`*b`?c", escapeWildcards("a*b?c"))
	assert.Equal(t, "x`[1`]", escapeWildcards("x[1]"))
}

func pathEngine(t *testing.T, wd string) *Engine {
	t.Helper()
	s := session.New()
	session.RegisterBuiltins(s)
	s.SetVariable("PWD", wd)
	return NewEngine(Config{Host: s})
}

func TestCompletePath_ListsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))

	e := pathEngine(t, dir)
	ctx := &Context{Host: e.host, WordToComplete: "a"}
	results := e.CompletePath(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha.txt", results[0].ListItemText)
	assert.Equal(t, KindProviderItem, results[0].Kind)
}

func TestCompletePath_DirectoriesGetSeparatorSuffix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))

	e := pathEngine(t, dir)
	ctx := &Context{Host: e.host, WordToComplete: "d"}
	results := e.CompletePath(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, KindProviderContainer, results[0].Kind)
	assert.True(t, len(results[0].CompletionText) > 0 &&
		results[0].CompletionText[len(results[0].CompletionText)-1] == os.PathSeparator)
}

func TestCompletePath_HiddenFilesNeedDotPrefix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shown"), nil, 0o644))

	e := pathEngine(t, dir)

	results := e.CompletePath(&Context{Host: e.host, WordToComplete: ""})
	require.Len(t, results, 1)
	assert.Equal(t, "shown", results[0].ListItemText)

	results = e.CompletePath(&Context{Host: e.host, WordToComplete: "."})
	require.Len(t, results, 1)
	assert.Equal(t, ".hidden", results[0].ListItemText)
}

func TestCompletePath_SubdirectoryWordKeepsTypedPrefix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), nil, 0o644))

	e := pathEngine(t, dir)
	results := e.CompletePath(&Context{Host: e.host, WordToComplete: "src/ma"})
	require.Len(t, results, 1)
	assert.Equal(t, "src/main.go", results[0].CompletionText)
}

func TestCompletePath_EnvironmentDrive(t *testing.T) {
	t.Setenv("NACRE_PATH_TEST", "value")
	s := session.New()
	session.RegisterBuiltins(s)
	e := NewEngine(Config{Host: s})

	results := e.CompletePath(&Context{Host: s, WordToComplete: "env:NACRE_PATH_T"})
	require.NotEmpty(t, results)
	assert.Equal(t, "NACRE_PATH_TEST", results[0].ListItemText)
	assert.Equal(t, "env:NACRE_PATH_TEST", results[0].CompletionText)
}

func TestCompletePath_UNCShares(t *testing.T) {
	s := session.New()
	session.RegisterBuiltins(s)
	s.SetShares("files", []session.Share{
		{Name: "public"},
		{Name: "admin$", Hidden: true},
	})
	e := NewEngine(Config{Host: s})

	results := e.CompletePath(&Context{Host: s, WordToComplete: `\\files\`})
	require.Len(t, results, 1)
	assert.Equal(t, "public", results[0].ListItemText)

	// hidden shares appear once the typed leaf narrows the list
	results = e.CompletePath(&Context{Host: s, WordToComplete: `\\files\ad`})
	require.Len(t, results, 1)
	assert.Equal(t, "admin$", results[0].ListItemText)
}

func TestCompletePath_UNCServerStillTyping(t *testing.T) {
	s := session.New()
	e := NewEngine(Config{Host: s})
	assert.Empty(t, e.CompletePath(&Context{Host: s, WordToComplete: `\\fil`}))
}

func TestCompletePath_UNCSharesWithoutHost(t *testing.T) {
	s := session.New()
	e := NewEngine(Config{Host: s})
	assert.Empty(t, e.CompletePath(&Context{WordToComplete: `\\files\pub`}))
}

func TestCompletePath_UNCSharesCancelled(t *testing.T) {
	s := session.New()
	s.SetShares("files", []session.Share{{Name: "public"}})
	e := NewEngine(Config{Host: s})
	s.Cancel()
	assert.Empty(t, e.CompletePath(&Context{Host: s, WordToComplete: `\\files\pub`}))
}

func TestCompletePath_RelativePathPolicy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), nil, 0o644))

	s := session.New()
	session.RegisterBuiltins(s)
	s.SetVariable("PWD", dir)
	forced := true
	e := NewEngine(Config{Host: s, Options: Options{RelativePaths: &forced}})

	results := e.CompletePath(&Context{Host: s, WordToComplete: "no"})
	require.Len(t, results, 1)
	assert.Equal(t, "."+string(os.PathSeparator)+"note.md", results[0].CompletionText)
}
