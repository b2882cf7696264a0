package suggest

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/session"
)

func valuesEngine(t *testing.T) *Engine {
	t.Helper()
	s := session.New()
	session.RegisterBuiltins(s)
	s.AddProcess("nginx", 100)
	s.AddProcess("nginx", 200)
	s.AddProcess("pwsh", 42)
	s.AddService("sshd", "OpenSSH server", "Running")
	s.AddService("cron", "", "Running")
	s.AddModule("PSReadLine", "2.3.4")
	s.AddJob(1, "Backup", "Completed")
	s.AddDrive("Temp", "FileSystem", "/tmp")
	s.AddTraceSource("CommandDiscovery")
	s.AddHistory("Get-Service")
	s.AddHistory("Get-Process")
	return NewEngine(Config{Host: s})
}

func completeLine(e *Engine, line string) []Result {
	return e.CompleteInput(line, len(line))
}

func listItems(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ListItemText)
	}
	return out
}

func TestProcessNameValues_Deduplicated(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Process -Name ng")
	require.Len(t, results, 1)
	assert.Equal(t, "nginx", results[0].ListItemText)
}

func TestProcessIDValues_NumericOrder(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Stop-Process -Id ")
	require.Len(t, results, 3)
	assert.Equal(t, "42", results[0].CompletionText)
	assert.Equal(t, "100", results[1].CompletionText)
	assert.Equal(t, "200", results[2].CompletionText)
}

func TestServiceNameValues_ToolTipFallsBackToName(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Service -Name ")
	require.Len(t, results, 2)
	assert.Equal(t, "cron", results[0].ListItemText)
	assert.Equal(t, "cron", results[0].ToolTip)
	assert.Equal(t, "sshd", results[1].ListItemText)
	assert.Equal(t, "OpenSSH server", results[1].ToolTip)
}

func TestPositionalServiceNameValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Service ss")
	require.Len(t, results, 1)
	assert.Equal(t, "sshd", results[0].CompletionText)
}

func TestVerbAndNounValues(t *testing.T) {
	e := valuesEngine(t)

	verbs := listItems(completeLine(e, "Get-Command -Verb Sto"))
	assert.Equal(t, []string{"Stop"}, verbs)

	nouns := listItems(completeLine(e, "Get-Command -Noun Proc"))
	assert.Equal(t, []string{"Process"}, nouns)
}

func TestModuleValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Import-Module -Name PSRead")
	require.Len(t, results, 1)
	assert.Equal(t, "PSReadLine", results[0].CompletionText)
	assert.Equal(t, "PSReadLine 2.3.4", results[0].ToolTip)
}

func TestVariableNameValues_NoSigil(t *testing.T) {
	e := valuesEngine(t)
	e.host.(*session.Session).SetVariable("favorite", 1)
	results := completeLine(e, "Get-Variable -Name fav")
	require.Len(t, results, 1)
	assert.Equal(t, "favorite", results[0].CompletionText)
}

func TestAliasNameValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Alias -Name gp")
	items := listItems(results)
	assert.Contains(t, items, "gps")
}

func TestDriveNameValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-PSDrive -Name Te")
	require.Len(t, results, 1)
	assert.Equal(t, "Temp", results[0].CompletionText)
	assert.Equal(t, "Temp (FileSystem)", results[0].ToolTip)
}

func TestJobNameValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Job -Name Back")
	require.Len(t, results, 1)
	assert.Equal(t, "Backup", results[0].CompletionText)
	assert.Equal(t, "Backup [Completed]", results[0].ToolTip)
}

func TestTraceSourceValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-TraceSource -Name Command")
	require.Len(t, results, 1)
	assert.Equal(t, "CommandDiscovery", results[0].CompletionText)
}

func TestHistoryIDValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Invoke-History -Id ")
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].CompletionText)
	assert.Equal(t, "Get-Service", results[0].ToolTip)
}

func TestSwitchParameterOffersBooleans(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Stop-Process -Force:")
	items := make([]string, 0, len(results))
	for _, r := range results {
		items = append(items, r.CompletionText)
	}
	assert.Contains(t, items, "$true")
	assert.Contains(t, items, "$false")
}

func TestUnknownArgumentFallsBackToPaths(t *testing.T) {
	e := valuesEngine(t)
	dir := t.TempDir()
	e.host.(*session.Session).SetVariable("PWD", dir)
	results := completeLine(e, "Unknown-Tool arg-with-no-match-zzz")
	assert.Empty(t, results)
}

func registerValidValuesCommand(e *Engine, command, parameter string, values ...string) {
	e.host.(*session.Session).RegisterCommand(&binding.CommandInfo{
		Name: command, Type: binding.CommandCmdlet,
		Parameters: []*binding.Parameter{
			{
				Name: parameter, Type: reflect.TypeOf(""), ValidValues: values,
				Sets: map[string]binding.SetMembership{binding.AllParameterSets: {Position: -1}},
			},
		},
	})
}

func TestDeclaredValidValues_FilteredByWord(t *testing.T) {
	e := valuesEngine(t)
	registerValidValuesCommand(e, "Set-Fruit", "Kind", "Apple", "Banana", "Cherry")

	results := completeLine(e, "Set-Fruit -Kind ba")
	require.Len(t, results, 1)
	assert.Equal(t, "Banana", results[0].CompletionText)
	assert.Equal(t, KindParameterValue, results[0].Kind)
}

func TestDeclaredValidValues_Ordering(t *testing.T) {
	e := valuesEngine(t)
	registerValidValuesCommand(e, "Set-Gauge", "Level", "Low", "Medium", "High")

	all := listItems(completeLine(e, "Set-Gauge -Level "))
	assert.Equal(t, []string{"High", "Low", "Medium"}, all)

	results := completeLine(e, "Set-Gauge -Level Medium")
	require.NotEmpty(t, results)
	assert.Equal(t, "Medium", results[0].CompletionText)
}

func TestEncodingValues(t *testing.T) {
	e := valuesEngine(t)
	items := listItems(completeLine(e, "Get-Content notes.txt -Encoding ut"))
	assert.Equal(t, []string{"utf32", "utf7", "utf8"}, items)
}

func TestJobStateValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Get-Job -State Sto")
	require.Len(t, results, 1)
	assert.Equal(t, "Stopped", results[0].CompletionText)
}

func TestItemTypeValues(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "New-Item -ItemType D")
	require.Len(t, results, 1)
	assert.Equal(t, "Directory", results[0].CompletionText)
	assert.Equal(t, KindParameterValue, results[0].Kind)
}

func TestDashedArgumentFallbackOffersCommands(t *testing.T) {
	e := valuesEngine(t)
	e.host.(*session.Session).SetVariable("PWD", t.TempDir())
	results := completeLine(e, "Unknown-Tool Get-Proc")
	assert.Contains(t, listItems(results), "Get-Process")
}

func TestRepeatedCompletionIsDeterministic(t *testing.T) {
	e := valuesEngine(t)
	first := completeLine(e, "Get-Process -Name ")
	second := completeLine(e, "Get-Process -Name ")
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestPipelinePropertyValues(t *testing.T) {
	s := session.New()
	session.RegisterBuiltins(s)
	e := NewEngine(Config{Host: s})
	e.Catalog().RegisterType("System.Diagnostics.Process", reflect.TypeOf(session.Process{}))

	results := completeLine(e, "Get-Process | Select-Object -Property Na")
	require.Len(t, results, 1)
	assert.Equal(t, "Name", results[0].CompletionText)
	assert.Equal(t, KindProperty, results[0].Kind)
}

func TestPipelinePropertyValues_NoUpstreamStage(t *testing.T) {
	e := valuesEngine(t)
	results := completeLine(e, "Select-Object -Property ")
	assert.Empty(t, results)
}
