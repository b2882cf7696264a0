// Package session defines the execution-host capability the suggestion
// engine consumes: running read-only helper commands against the live
// session, polling for cooperative cancellation, and listing file shares.
// The in-memory Session here backs the CLI driver and the tests; the
// production shell injects its own host.
package session

import (
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/nacre-sh/nacre/internal/binding"
	"github.com/nacre-sh/nacre/internal/derrors"
)

// Host is the capability surface handed to a completion request. Every call
// is read-only; any error from Run means "no results" to the caller.
type Host interface {
	// Run executes a read-only helper command and returns its output objects.
	Run(command string, args map[string]interface{}) ([]interface{}, error)
	// IsCancelled is polled inside large enumerations so a user abort is
	// honored without waiting for the whole listing.
	IsCancelled() bool
	// ListShares enumerates the file shares of a server for UNC completion.
	ListShares(server string) ([]Share, error)
}

// Share is one file share of a server.
type Share struct {
	Server string
	Name   string
	Hidden bool
}

// Variable is a session variable.
type Variable struct {
	Name        string
	Value       interface{}
	Description string
}

// Alias maps a short name to a command.
type Alias struct {
	Name       string
	Definition string
}

// Drive is a provider drive.
type Drive struct {
	Name     string
	Provider string
	Root     string
}

// Provider is an item provider.
type Provider struct {
	Name   string
	Drives []string
}

// Module is a loadable module.
type Module struct {
	Name    string
	Version string
}

// Process is a running process.
type Process struct {
	Name string
	ID   int
}

// Service is a system service.
type Service struct {
	Name        string
	DisplayName string
	Status      string
}

// Job is a background job.
type Job struct {
	ID    int
	Name  string
	State string
}

// HistoryEntry is one command-history record.
type HistoryEntry struct {
	ID          int
	CommandLine string
}

// TraceSource is a named trace listener source.
type TraceSource struct {
	Name string
}

// Session is an in-memory host implementation.
type Session struct {
	vars          map[string]*Variable
	env           map[string]string
	aliases       map[string]*Alias
	commands      map[string]*binding.CommandInfo
	drives        []Drive
	providers     []Provider
	modules       []Module
	processes     []Process
	services      []Service
	jobs          []Job
	scheduledJobs []string
	traceSources  []TraceSource
	history       []HistoryEntry
	shares        map[string][]Share
	cancelled     atomic.Bool
}

// New creates a session preloaded with the interpreter's automatic variables
// and the process environment.
func New() *Session {
	s := &Session{
		vars:     map[string]*Variable{},
		env:      map[string]string{},
		aliases:  map[string]*Alias{},
		commands: map[string]*binding.CommandInfo{},
		shares:   map[string][]Share{},
	}
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	s.SetVariable("null", nil)
	s.SetVariable("true", true)
	s.SetVariable("false", false)
	s.SetVariable("HOME", home)
	s.SetVariable("PWD", wd)
	s.SetVariable("PID", os.Getpid())
	for _, kv := range os.Environ() {
		if eq := strings.IndexByte(kv, '='); eq > 0 {
			s.env[kv[:eq]] = kv[eq+1:]
		}
	}
	s.drives = []Drive{
		{Name: "/", Provider: "FileSystem", Root: "/"},
		{Name: "Env", Provider: "Environment", Root: ""},
		{Name: "Variable", Provider: "Variable", Root: ""},
	}
	s.providers = []Provider{
		{Name: "FileSystem", Drives: []string{"/"}},
		{Name: "Environment", Drives: []string{"Env"}},
		{Name: "Variable", Drives: []string{"Variable"}},
	}
	return s
}

// SetVariable sets a session variable.
func (s *Session) SetVariable(name string, value interface{}) {
	s.vars[strings.ToLower(name)] = &Variable{Name: name, Value: value}
}

// GetVariable looks up a session variable by name, case-insensitively.
func (s *Session) GetVariable(name string) (*Variable, bool) {
	v, ok := s.vars[strings.ToLower(name)]
	return v, ok
}

// Getenv looks up an environment entry.
func (s *Session) Getenv(name string) (string, bool) {
	v, ok := s.env[name]
	return v, ok
}

// RegisterCommand adds command metadata to the session.
func (s *Session) RegisterCommand(ci *binding.CommandInfo) {
	s.commands[strings.ToLower(ci.Name)] = ci
}

// RegisterAlias adds an alias.
func (s *Session) RegisterAlias(name, definition string) {
	s.aliases[strings.ToLower(name)] = &Alias{Name: name, Definition: definition}
}

// ResolveCommand resolves a command or alias name to its metadata.
func (s *Session) ResolveCommand(name string) *binding.CommandInfo {
	key := strings.ToLower(name)
	if ci, ok := s.commands[key]; ok {
		return ci
	}
	if a, ok := s.aliases[key]; ok {
		if ci, okc := s.commands[strings.ToLower(a.Definition)]; okc {
			return ci
		}
	}
	return nil
}

// AddHistory appends a command line to the session history.
func (s *Session) AddHistory(line string) {
	s.history = append(s.history, HistoryEntry{ID: len(s.history) + 1, CommandLine: line})
}

// AddProcess registers a process for Get-Process queries.
func (s *Session) AddProcess(name string, id int) {
	s.processes = append(s.processes, Process{Name: name, ID: id})
}

// AddService registers a service.
func (s *Session) AddService(name, displayName, status string) {
	s.services = append(s.services, Service{Name: name, DisplayName: displayName, Status: status})
}

// AddModule registers a module.
func (s *Session) AddModule(name, version string) {
	s.modules = append(s.modules, Module{Name: name, Version: version})
}

// AddJob registers a background job.
func (s *Session) AddJob(id int, name, state string) {
	s.jobs = append(s.jobs, Job{ID: id, Name: name, State: state})
}

// AddScheduledJob registers a scheduled job name.
func (s *Session) AddScheduledJob(name string) {
	s.scheduledJobs = append(s.scheduledJobs, name)
}

// AddTraceSource registers a trace source name.
func (s *Session) AddTraceSource(name string) {
	s.traceSources = append(s.traceSources, TraceSource{Name: name})
}

// AddDrive registers a provider drive.
func (s *Session) AddDrive(name, provider, root string) {
	s.drives = append(s.drives, Drive{Name: name, Provider: provider, Root: root})
}

// SetShares installs the share list of a server for UNC completion.
func (s *Session) SetShares(server string, shares []Share) {
	s.shares[strings.ToLower(server)] = shares
}

// Cancel raises the cooperative cancellation flag.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// IsCancelled implements Host.
func (s *Session) IsCancelled() bool {
	return s.cancelled.Load()
}

// ListShares implements Host.
func (s *Session) ListShares(server string) ([]Share, error) {
	shares, ok := s.shares[strings.ToLower(server)]
	if !ok {
		return nil, derrors.NewNotFoundError(server, "no shares known for server")
	}
	return shares, nil
}

// Run implements Host. Only read-only queries are recognized; anything else
// fails, which callers must treat as empty results.
func (s *Session) Run(command string, args map[string]interface{}) ([]interface{}, error) {
	name, _ := args["Name"].(string)
	switch strings.ToLower(command) {
	case "get-command":
		var out []interface{}
		for _, ci := range s.commands {
			if name == "" || wildcardEqualFold(name, ci.Name) {
				out = append(out, ci)
			}
		}
		sort.Slice(out, func(a, b int) bool {
			return out[a].(*binding.CommandInfo).Name < out[b].(*binding.CommandInfo).Name
		})
		return out, nil
	case "get-variable":
		var out []interface{}
		for _, v := range s.vars {
			out = append(out, v)
		}
		sort.Slice(out, func(a, b int) bool {
			return out[a].(*Variable).Name < out[b].(*Variable).Name
		})
		return out, nil
	case "get-environment":
		keys := make([]string, 0, len(s.env))
		for k := range s.env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]interface{}, 0, len(keys))
		for _, k := range keys {
			out = append(out, &Variable{Name: k, Value: s.env[k]})
		}
		return out, nil
	case "get-alias":
		var out []interface{}
		for _, a := range s.aliases {
			out = append(out, a)
		}
		sort.Slice(out, func(a, b int) bool {
			return out[a].(*Alias).Name < out[b].(*Alias).Name
		})
		return out, nil
	case "get-psdrive":
		out := make([]interface{}, 0, len(s.drives))
		for i := range s.drives {
			out = append(out, &s.drives[i])
		}
		return out, nil
	case "get-psprovider":
		out := make([]interface{}, 0, len(s.providers))
		for i := range s.providers {
			out = append(out, &s.providers[i])
		}
		return out, nil
	case "get-module":
		out := make([]interface{}, 0, len(s.modules))
		for i := range s.modules {
			out = append(out, &s.modules[i])
		}
		return out, nil
	case "get-process":
		out := make([]interface{}, 0, len(s.processes))
		for i := range s.processes {
			out = append(out, &s.processes[i])
		}
		return out, nil
	case "get-service":
		out := make([]interface{}, 0, len(s.services))
		for i := range s.services {
			out = append(out, &s.services[i])
		}
		return out, nil
	case "get-job":
		out := make([]interface{}, 0, len(s.jobs))
		for i := range s.jobs {
			out = append(out, &s.jobs[i])
		}
		return out, nil
	case "get-scheduledjob":
		out := make([]interface{}, 0, len(s.scheduledJobs))
		for _, j := range s.scheduledJobs {
			out = append(out, j)
		}
		return out, nil
	case "get-tracesource":
		out := make([]interface{}, 0, len(s.traceSources))
		for i := range s.traceSources {
			out = append(out, &s.traceSources[i])
		}
		return out, nil
	case "get-history":
		out := make([]interface{}, 0, len(s.history))
		for i := range s.history {
			out = append(out, &s.history[i])
		}
		return out, nil
	default:
		return nil, derrors.NewExecutionError(command, "unknown helper command", nil)
	}
}

// wildcardEqualFold matches a * / ? pattern case-insensitively.
func wildcardEqualFold(pattern, s string) bool {
	return matchWildcard(strings.ToLower(pattern), strings.ToLower(s))
}

func matchWildcard(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = strings.TrimLeft(pattern, "*")
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchWildcard(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if s == "" {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		default:
			if s == "" || pattern[0] != s[0] {
				return false
			}
			pattern = pattern[1:]
			s = s[1:]
		}
	}
	return s == ""
}
