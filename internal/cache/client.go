package cache

import "github.com/nacre-sh/nacre/internal/cim"

// Client wraps a management client with write-through persistence. Class
// enumerations and schema reads are answered from the store when present;
// misses go to the wrapped client and are stored on the way back. Instance
// and associator queries always hit the wire since their results are live
// data.
type Client struct {
	inner cim.Client
	store *Store
}

// NewClient wraps client with the store. A nil store returns the client
// unchanged.
func NewClient(client cim.Client, store *Store) cim.Client {
	if store == nil {
		return client
	}
	return &Client{inner: client, store: store}
}

// GetClass returns a class schema, preferring the persisted copy.
func (c *Client) GetClass(namespace, className string) (*cim.Class, error) {
	if cls, ok := c.store.Class(namespace, className); ok {
		return cls, nil
	}
	cls, err := c.inner.GetClass(namespace, className)
	if err != nil {
		return nil, err
	}
	_ = c.store.SetClass(cls)
	return cls, nil
}

// EnumerateClasses lists the classes of a namespace, serving persisted class
// names as name-only schemas when available.
func (c *Client) EnumerateClasses(namespace string) ([]*cim.Class, error) {
	if names, ok := c.store.ClassNames(namespace); ok {
		classes := make([]*cim.Class, 0, len(names))
		for _, name := range names {
			classes = append(classes, &cim.Class{Namespace: namespace, Name: name})
		}
		return classes, nil
	}

	classes, err := c.inner.EnumerateClasses(namespace)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(classes))
	for _, cls := range classes {
		names = append(names, cls.Name)
	}
	_ = c.store.SetClassNames(namespace, names)
	return classes, nil
}

// EnumerateInstances passes through to the wrapped client.
func (c *Client) EnumerateInstances(namespace, typeName string) ([]cim.Instance, error) {
	return c.inner.EnumerateInstances(namespace, typeName)
}

// QueryAssociators passes through to the wrapped client.
func (c *Client) QueryAssociators(namespace, className string) ([]cim.Instance, error) {
	return c.inner.QueryAssociators(namespace, className)
}

// EnumerateNamespaces passes through to the wrapped client.
func (c *Client) EnumerateNamespaces(parent string) ([]string, error) {
	return c.inner.EnumerateNamespaces(parent)
}
