package session

import (
	"reflect"

	"github.com/nacre-sh/nacre/internal/binding"
)

var (
	stringType      = reflect.TypeOf("")
	stringSliceType = reflect.TypeOf([]string{})
	intType         = reflect.TypeOf(0)
	intSliceType    = reflect.TypeOf([]int{})
	boolType        = reflect.TypeOf(false)
	objectType      = reflect.TypeOf((*interface{})(nil)).Elem()
	blockType       = reflect.TypeOf((*func())(nil))
)

func param(name string, t reflect.Type, sets map[string]binding.SetMembership) *binding.Parameter {
	if sets == nil {
		sets = map[string]binding.SetMembership{
			binding.AllParameterSets: {Position: -1},
		}
	}
	return &binding.Parameter{Name: name, Type: t, Sets: sets}
}

func positional(name string, t reflect.Type, pos int) *binding.Parameter {
	return param(name, t, map[string]binding.SetMembership{
		binding.AllParameterSets: {Position: pos},
	})
}

func named(name string, t reflect.Type) *binding.Parameter {
	return param(name, t, nil)
}

func switchParam(name string) *binding.Parameter {
	return named(name, boolType)
}

func validSet(name string, t reflect.Type, values ...string) *binding.Parameter {
	p := named(name, t)
	p.ValidValues = values
	return p
}

// RegisterBuiltins registers the standard command surface and its aliases.
// Parameter declarations carry positions, parameter sets and types so
// pseudo-binding behaves like the real binder.
func RegisterBuiltins(s *Session) {
	add := func(ci *binding.CommandInfo) {
		ci.Type = binding.CommandCmdlet
		s.RegisterCommand(ci)
	}

	add(&binding.CommandInfo{
		Name: "Get-Command", Module: "Microsoft.PowerShell.Core",
		Description: "Gets all commands",
		OutputTypes: []string{"System.Management.Automation.CommandInfo"},
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("Module", stringSliceType),
			named("Verb", stringSliceType),
			named("Noun", stringSliceType),
			named("TotalCount", intType),
			switchParam("ListImported"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Help", Module: "Microsoft.PowerShell.Core",
		Description: "Displays help about commands and concepts",
		Parameters: []*binding.Parameter{
			positional("Name", stringType, 0),
			named("Category", stringSliceType),
			switchParam("Full"),
			switchParam("Detailed"),
			switchParam("Examples"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Process", Module: "Microsoft.PowerShell.Management",
		Description: "Gets the processes running on the local computer",
		DefaultSet:  "Name",
		OutputTypes: []string{"System.Diagnostics.Process"},
		Parameters: []*binding.Parameter{
			param("Name", stringSliceType, map[string]binding.SetMembership{
				"Name": {Position: 0},
			}),
			param("Id", intSliceType, map[string]binding.SetMembership{
				"Id": {Position: -1, Mandatory: true},
			}),
			param("InputObject", objectType, map[string]binding.SetMembership{
				"InputObject": {Position: -1, Mandatory: true, ValueFromPipeline: true},
			}),
			switchParam("IncludeUserName"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Stop-Process", Module: "Microsoft.PowerShell.Management",
		Description: "Stops one or more running processes",
		DefaultSet:  "Id",
		Parameters: []*binding.Parameter{
			param("Id", intSliceType, map[string]binding.SetMembership{
				"Id": {Position: 0, Mandatory: true},
			}),
			param("Name", stringSliceType, map[string]binding.SetMembership{
				"Name": {Position: -1, Mandatory: true},
			}),
			switchParam("Force"),
			switchParam("PassThru"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Service", Module: "Microsoft.PowerShell.Management",
		Description: "Gets the services on the computer",
		OutputTypes: []string{"System.ServiceProcess.ServiceController"},
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("DisplayName", stringSliceType),
			named("Include", stringSliceType),
			named("Exclude", stringSliceType),
		},
	})
	for _, verb := range []string{"Start", "Stop", "Restart"} {
		add(&binding.CommandInfo{
			Name: verb + "-Service", Module: "Microsoft.PowerShell.Management",
			Description: verb + "s one or more services",
			Parameters: []*binding.Parameter{
				positional("Name", stringSliceType, 0),
				switchParam("PassThru"),
				switchParam("Force"),
			},
		})
	}
	add(&binding.CommandInfo{
		Name: "Get-ChildItem", Module: "Microsoft.PowerShell.Management",
		Description: "Gets the items in one or more specified locations",
		DefaultSet:  "Items",
		OutputTypes: []string{"System.IO.FileInfo", "System.IO.DirectoryInfo"},
		Parameters: []*binding.Parameter{
			param("Path", stringSliceType, map[string]binding.SetMembership{
				"Items": {Position: 0},
			}),
			param("LiteralPath", stringSliceType, map[string]binding.SetMembership{
				"LiteralItems": {Position: -1, Mandatory: true},
			}),
			positional("Filter", stringType, 1),
			switchParam("Recurse"),
			switchParam("Force"),
			switchParam("Directory"),
			switchParam("File"),
			named("Depth", intType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Set-Location", Module: "Microsoft.PowerShell.Management",
		Description: "Sets the current working location",
		DefaultSet:  "Path",
		Parameters: []*binding.Parameter{
			param("Path", stringType, map[string]binding.SetMembership{
				"Path": {Position: 0},
			}),
			param("LiteralPath", stringType, map[string]binding.SetMembership{
				"LiteralPath": {Position: -1, Mandatory: true},
			}),
			switchParam("PassThru"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Content", Module: "Microsoft.PowerShell.Management",
		Description: "Gets the content of the item at the specified location",
		OutputTypes: []string{"System.String"},
		Parameters: []*binding.Parameter{
			positional("Path", stringSliceType, 0),
			named("TotalCount", intType),
			named("Tail", intType),
			switchParam("Raw"),
			validSet("Encoding", stringType,
				"ascii", "bigendianunicode", "oem", "unicode", "utf7", "utf8", "utf32"),
		},
	})
	add(&binding.CommandInfo{
		Name: "New-Item", Module: "Microsoft.PowerShell.Management",
		Description: "Creates a new item",
		Parameters: []*binding.Parameter{
			positional("Path", stringSliceType, 0),
			named("Name", stringType),
			named("ItemType", stringType),
			named("Value", objectType),
			switchParam("Force"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Copy-Item", Module: "Microsoft.PowerShell.Management",
		Description: "Copies an item from one location to another",
		Parameters: []*binding.Parameter{
			positional("Path", stringSliceType, 0),
			positional("Destination", stringType, 1),
			switchParam("Recurse"),
			switchParam("Force"),
			switchParam("PassThru"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Where-Object", Module: "Microsoft.PowerShell.Core",
		Description: "Selects objects from a collection based on their property values",
		DefaultSet:  "EqualSet",
		Parameters: []*binding.Parameter{
			param("FilterScript", blockType, map[string]binding.SetMembership{
				"ScriptBlockSet": {Position: 0, Mandatory: true},
			}),
			param("Property", stringType, map[string]binding.SetMembership{
				"EqualSet": {Position: 0, Mandatory: true},
			}),
			param("Value", objectType, map[string]binding.SetMembership{
				"EqualSet": {Position: 1},
			}),
			param("InputObject", objectType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: -1, ValueFromPipeline: true},
			}),
		},
	})
	add(&binding.CommandInfo{
		Name: "ForEach-Object", Module: "Microsoft.PowerShell.Core",
		Description: "Performs an operation against each item in a collection",
		Parameters: []*binding.Parameter{
			param("Process", blockType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: 0, Mandatory: true, ValueFromRemaining: true},
			}),
			named("Begin", blockType),
			named("End", blockType),
			param("InputObject", objectType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: -1, ValueFromPipeline: true},
			}),
		},
	})
	add(&binding.CommandInfo{
		Name: "Select-Object", Module: "Microsoft.PowerShell.Utility",
		Description: "Selects objects or object properties",
		Parameters: []*binding.Parameter{
			positional("Property", stringSliceType, 0),
			named("ExcludeProperty", stringSliceType),
			named("ExpandProperty", stringType),
			named("First", intType),
			named("Last", intType),
			named("Skip", intType),
			switchParam("Unique"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Sort-Object", Module: "Microsoft.PowerShell.Utility",
		Description: "Sorts objects by property values",
		Parameters: []*binding.Parameter{
			positional("Property", stringSliceType, 0),
			switchParam("Descending"),
			switchParam("Unique"),
			switchParam("CaseSensitive"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Format-Table", Module: "Microsoft.PowerShell.Utility",
		Description: "Formats the output as a table",
		Parameters: []*binding.Parameter{
			positional("Property", stringSliceType, 0),
			switchParam("AutoSize"),
			switchParam("Wrap"),
			named("GroupBy", stringType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Group-Object", Module: "Microsoft.PowerShell.Utility",
		Description: "Groups objects that contain the same value for specified properties",
		Parameters: []*binding.Parameter{
			positional("Property", stringSliceType, 0),
			switchParam("NoElement"),
			switchParam("AsHashTable"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Write-Output", Module: "Microsoft.PowerShell.Utility",
		Description: "Writes objects to the pipeline",
		Parameters: []*binding.Parameter{
			param("InputObject", objectType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: 0, Mandatory: true, ValueFromPipeline: true, ValueFromRemaining: true},
			}),
			switchParam("NoEnumerate"),
		},
	})
	add(&binding.CommandInfo{
		Name: "New-Object", Module: "Microsoft.PowerShell.Utility",
		Description: "Creates an instance of a .NET or COM object",
		DefaultSet:  "Net",
		Parameters: []*binding.Parameter{
			param("TypeName", stringType, map[string]binding.SetMembership{
				"Net": {Position: 0, Mandatory: true},
			}),
			param("ArgumentList", reflect.TypeOf([]interface{}{}), map[string]binding.SetMembership{
				"Net": {Position: 1},
			}),
			param("ComObject", stringType, map[string]binding.SetMembership{
				"Com": {Position: -1, Mandatory: true},
			}),
			named("Property", reflect.TypeOf(map[string]interface{}{})),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Variable", Module: "Microsoft.PowerShell.Utility",
		Description: "Gets the variables in the current console",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("Scope", stringType),
			switchParam("ValueOnly"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Set-Variable", Module: "Microsoft.PowerShell.Utility",
		Description: "Sets the value of a variable",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			positional("Value", objectType, 1),
			named("Scope", stringType),
			switchParam("Force"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Alias", Module: "Microsoft.PowerShell.Utility",
		Description: "Gets the aliases for the current session",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("Definition", stringSliceType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Member", Module: "Microsoft.PowerShell.Utility",
		Description: "Gets the members of objects",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("MemberType", stringSliceType),
			param("InputObject", objectType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: -1, ValueFromPipeline: true},
			}),
			switchParam("Static"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-PSDrive", Module: "Microsoft.PowerShell.Management",
		Description: "Gets drives in the current session",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("PSProvider", stringSliceType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-PSProvider", Module: "Microsoft.PowerShell.Core",
		Description: "Gets information about the specified provider",
		Parameters: []*binding.Parameter{
			positional("PSProvider", stringSliceType, 0),
		},
	})
	add(&binding.CommandInfo{
		Name: "Import-Module", Module: "Microsoft.PowerShell.Core",
		Description: "Adds modules to the current session",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			switchParam("Force"),
			switchParam("PassThru"),
			named("Prefix", stringType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Module", Module: "Microsoft.PowerShell.Core",
		Description: "Lists the modules imported or available for import",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			switchParam("ListAvailable"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-History", Module: "Microsoft.PowerShell.Core",
		Description: "Gets a list of the commands entered during the current session",
		Parameters: []*binding.Parameter{
			positional("Id", intSliceType, 0),
			positional("Count", intType, 1),
		},
	})
	add(&binding.CommandInfo{
		Name: "Invoke-History", Module: "Microsoft.PowerShell.Core",
		Description: "Runs commands from the session history",
		Parameters: []*binding.Parameter{
			positional("Id", stringType, 0),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-Job", Module: "Microsoft.PowerShell.Core",
		Description: "Gets background jobs",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
			named("Id", intSliceType),
			validSet("State", stringType,
				"NotStarted", "Running", "Completed", "Failed", "Stopped", "Blocked", "Suspended"),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-TraceSource", Module: "Microsoft.PowerShell.Utility",
		Description: "Gets trace sources",
		Parameters: []*binding.Parameter{
			positional("Name", stringSliceType, 0),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-CimClass", Module: "CimCmdlets",
		Description: "Gets a list of CIM classes in a specific namespace",
		Parameters: []*binding.Parameter{
			positional("ClassName", stringType, 0),
			named("Namespace", stringType),
			named("MethodName", stringType),
			named("PropertyName", stringType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-CimInstance", Module: "CimCmdlets",
		Description: "Gets the CIM instances of a class",
		DefaultSet:  "ClassName",
		Parameters: []*binding.Parameter{
			param("ClassName", stringType, map[string]binding.SetMembership{
				"ClassName": {Position: 0, Mandatory: true},
			}),
			param("Query", stringType, map[string]binding.SetMembership{
				"Query": {Position: -1, Mandatory: true},
			}),
			named("Namespace", stringType),
			named("Filter", stringType),
		},
	})
	add(&binding.CommandInfo{
		Name: "Invoke-CimMethod", Module: "CimCmdlets",
		Description: "Invokes a method of a CIM class or instance",
		DefaultSet:  "ClassName",
		Parameters: []*binding.Parameter{
			param("ClassName", stringType, map[string]binding.SetMembership{
				"ClassName": {Position: 0, Mandatory: true},
			}),
			param("InputObject", objectType, map[string]binding.SetMembership{
				"InputObject": {Position: -1, Mandatory: true, ValueFromPipeline: true},
			}),
			param("MethodName", stringType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: 1, Mandatory: true},
			}),
			named("Namespace", stringType),
			named("Arguments", reflect.TypeOf(map[string]interface{}{})),
		},
	})
	add(&binding.CommandInfo{
		Name: "Get-CimAssociatedInstance", Module: "CimCmdlets",
		Description: "Retrieves the CIM instances associated with a specific instance",
		Parameters: []*binding.Parameter{
			param("InputObject", objectType, map[string]binding.SetMembership{
				binding.AllParameterSets: {Position: 0, Mandatory: true, ValueFromPipeline: true},
			}),
			named("ResultClassName", stringType),
			named("Association", stringType),
			named("Namespace", stringType),
		},
	})

	for alias, target := range map[string]string{
		"gcm":    "Get-Command",
		"gps":    "Get-Process",
		"gsv":    "Get-Service",
		"gci":    "Get-ChildItem",
		"ls":     "Get-ChildItem",
		"dir":    "Get-ChildItem",
		"cd":     "Set-Location",
		"cat":    "Get-Content",
		"cp":     "Copy-Item",
		"ni":     "New-Item",
		"where":  "Where-Object",
		"%":      "ForEach-Object",
		"?":      "Where-Object",
		"select": "Select-Object",
		"sort":   "Sort-Object",
		"ft":     "Format-Table",
		"gm":     "Get-Member",
		"ipmo":   "Import-Module",
		"gmo":    "Get-Module",
		"h":      "Get-History",
		"ihy":    "Invoke-History",
		"gdr":    "Get-PSDrive",
		"gv":     "Get-Variable",
		"sv":     "Set-Variable",
		"gal":    "Get-Alias",
	} {
		s.RegisterAlias(alias, target)
	}
}
