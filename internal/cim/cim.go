// Package cim defines the management-instrumentation client contract and
// the process-wide metadata caches the suggestion engine completes CIM
// namespaces, class names, methods and association results from. Caches are
// populated lazily, one remote query per key, and retained for the process
// lifetime: cardinality is bounded by the remote schema, so eviction is not
// required.
package cim

import (
	"sort"
	"strings"
	"sync"
)

// Property is one property of a CIM class.
type Property struct {
	Name string
	Type string
}

// Method is one method of a CIM class.
type Method struct {
	Name       string
	Parameters []Property
}

// Class is the metadata of one CIM class.
type Class struct {
	Namespace  string
	Name       string
	Properties []Property
	Methods    []Method
}

// Instance is one CIM instance reduced to its property values.
type Instance map[string]interface{}

// Client is the remote management client contract. Implementations own the
// transport; the engine only consumes metadata.
type Client interface {
	GetClass(namespace, className string) (*Class, error)
	EnumerateClasses(namespace string) ([]*Class, error)
	EnumerateInstances(namespace, typeName string) ([]Instance, error)
	QueryAssociators(namespace, className string) ([]Instance, error)
	// EnumerateNamespaces lists child namespaces of a parent namespace.
	EnumerateNamespaces(parent string) ([]string, error)
}

// Cache memoizes remote metadata per process. The zero value is usable.
type Cache struct {
	mu          sync.Mutex
	classNames  map[string][]string // namespace -> sorted class names
	classes     map[string]*Class   // namespace|class -> metadata
	associators map[string][]string // namespace|class -> result class names
}

var processCache = &Cache{}

// Shared returns the process-wide cache.
func Shared() *Cache { return processCache }

// Reset clears the cache. Tests only.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classNames = nil
	c.classes = nil
	c.associators = nil
}

func key(namespace, class string) string {
	return strings.ToLower(namespace) + "|" + strings.ToLower(class)
}

// ClassNames returns the class names of a namespace, querying the client
// only on the first use per namespace. cancelled is polled during the
// enumeration so a user abort does not wait for the full listing. A failed
// or cancelled query yields nil and is not cached.
func (c *Cache) ClassNames(client Client, namespace string, cancelled func() bool) []string {
	if client == nil {
		return nil
	}
	c.mu.Lock()
	if names, ok := c.classNames[strings.ToLower(namespace)]; ok {
		c.mu.Unlock()
		return names
	}
	c.mu.Unlock()

	classes, err := client.EnumerateClasses(namespace)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(classes))
	for _, cls := range classes {
		if cancelled != nil && cancelled() {
			return nil
		}
		names = append(names, cls.Name)
	}
	sort.Strings(names)

	c.mu.Lock()
	if c.classNames == nil {
		c.classNames = map[string][]string{}
	}
	c.classNames[strings.ToLower(namespace)] = names
	c.mu.Unlock()
	return names
}

// GetClass returns one class's metadata, cached per (namespace, class).
func (c *Cache) GetClass(client Client, namespace, className string) *Class {
	if client == nil {
		return nil
	}
	k := key(namespace, className)
	c.mu.Lock()
	if cls, ok := c.classes[k]; ok {
		c.mu.Unlock()
		return cls
	}
	c.mu.Unlock()

	cls, err := client.GetClass(namespace, className)
	if err != nil || cls == nil {
		return nil
	}

	c.mu.Lock()
	if c.classes == nil {
		c.classes = map[string]*Class{}
	}
	c.classes[k] = cls
	c.mu.Unlock()
	return cls
}

// AssociatorClassNames returns the distinct result class names of the
// class's associators, cached per (namespace, class).
func (c *Cache) AssociatorClassNames(client Client, namespace, className string, cancelled func() bool) []string {
	if client == nil {
		return nil
	}
	k := key(namespace, className)
	c.mu.Lock()
	if names, ok := c.associators[k]; ok {
		c.mu.Unlock()
		return names
	}
	c.mu.Unlock()

	instances, err := client.QueryAssociators(namespace, className)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	for _, inst := range instances {
		if cancelled != nil && cancelled() {
			return nil
		}
		name, _ := inst["__CLASS"].(string)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}
	sort.Strings(names)

	c.mu.Lock()
	if c.associators == nil {
		c.associators = map[string][]string{}
	}
	c.associators[k] = names
	c.mu.Unlock()
	return names
}

// Namespaces lists child namespaces of a parent, polling cancellation.
// Namespace listings are not cached: they are small and servers differ on
// dynamic registration.
func Namespaces(client Client, parent string, cancelled func() bool) []string {
	if client == nil {
		return nil
	}
	children, err := client.EnumerateNamespaces(parent)
	if err != nil {
		return nil
	}
	var out []string
	for _, ns := range children {
		if cancelled != nil && cancelled() {
			return nil
		}
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
