package suggest

import (
	"strings"
	"sync"

	"github.com/nacre-sh/nacre/internal/binding"
)

// CustomRegistry holds argument completers registered out of band, keyed
// by command plus parameter or by parameter alone. Command-specific
// registrations shadow parameter-wide ones.
type CustomRegistry struct {
	mu          sync.RWMutex
	byCommand   map[string]binding.CompleterFunc // "command/parameter"
	byParameter map[string]binding.CompleterFunc // "parameter"
}

// NewCustomRegistry creates an empty registry.
func NewCustomRegistry() *CustomRegistry {
	return &CustomRegistry{
		byCommand:   map[string]binding.CompleterFunc{},
		byParameter: map[string]binding.CompleterFunc{},
	}
}

// Register attaches a completer to a parameter of one command, or to the
// parameter on every command when command is empty.
func (r *CustomRegistry) Register(command, parameter string, fn binding.CompleterFunc) {
	if parameter == "" || fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if command == "" {
		r.byParameter[strings.ToLower(parameter)] = fn
		return
	}
	r.byCommand[registryKey(command, parameter)] = fn
}

// Unregister removes a registration. An empty command removes the
// parameter-wide entry.
func (r *CustomRegistry) Unregister(command, parameter string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if command == "" {
		delete(r.byParameter, strings.ToLower(parameter))
		return
	}
	delete(r.byCommand, registryKey(command, parameter))
}

// Lookup finds the completer for a command/parameter pair, nil when none
// is registered.
func (r *CustomRegistry) Lookup(command, parameter string) binding.CompleterFunc {
	if parameter == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if command != "" {
		if fn, ok := r.byCommand[registryKey(command, parameter)]; ok {
			return fn
		}
	}
	return r.byParameter[strings.ToLower(parameter)]
}

func registryKey(command, parameter string) string {
	return strings.ToLower(command) + "/" + strings.ToLower(parameter)
}
