package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nacre-sh/nacre/internal/cim"
)

type countingClient struct {
	enumCalls int
	getCalls  int
}

func (c *countingClient) GetClass(namespace, className string) (*cim.Class, error) {
	c.getCalls++
	if className == "missing" {
		return nil, errors.New("not found")
	}
	return &cim.Class{Namespace: namespace, Name: className}, nil
}

func (c *countingClient) EnumerateClasses(namespace string) ([]*cim.Class, error) {
	c.enumCalls++
	return []*cim.Class{
		{Namespace: namespace, Name: "Win32_BIOS"},
		{Namespace: namespace, Name: "Win32_Process"},
	}, nil
}

func (c *countingClient) EnumerateInstances(string, string) ([]cim.Instance, error) {
	return nil, nil
}

func (c *countingClient) QueryAssociators(string, string) ([]cim.Instance, error) {
	return nil, nil
}

func (c *countingClient) EnumerateNamespaces(string) ([]string, error) {
	return []string{"cimv2"}, nil
}

func TestNewClient_NilStorePassesThrough(t *testing.T) {
	inner := &countingClient{}
	assert.Equal(t, cim.Client(inner), NewClient(inner, nil))
}

func TestClient_EnumerateClassesWriteThrough(t *testing.T) {
	store := newTestStore(t)
	inner := &countingClient{}
	client := NewClient(inner, store)

	classes, err := client.EnumerateClasses("root/cimv2")
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	assert.Equal(t, 1, inner.enumCalls)

	// second enumeration is answered from the store
	classes, err = client.EnumerateClasses("root/cimv2")
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	assert.Equal(t, 1, inner.enumCalls)

	names, found := store.ClassNames("root/cimv2")
	require.True(t, found)
	assert.Equal(t, []string{"Win32_BIOS", "Win32_Process"}, names)
}

func TestClient_EnumerationSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	store, err := New(path, "1.0.0")
	require.NoError(t, err)
	inner := &countingClient{}
	_, err = NewClient(inner, store).EnumerateClasses("root/cimv2")
	require.NoError(t, err)

	store2, err := New(path, "1.0.0")
	require.NoError(t, err)
	inner2 := &countingClient{}
	classes, err := NewClient(inner2, store2).EnumerateClasses("root/cimv2")
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	assert.Zero(t, inner2.enumCalls, "restarted client should not touch the wire")
}

func TestClient_GetClassWriteThrough(t *testing.T) {
	store := newTestStore(t)
	inner := &countingClient{}
	client := NewClient(inner, store)

	cls, err := client.GetClass("root/cimv2", "Win32_Process")
	require.NoError(t, err)
	assert.Equal(t, "Win32_Process", cls.Name)

	_, err = client.GetClass("root/cimv2", "Win32_Process")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.getCalls)
}

func TestClient_GetClassErrorNotCached(t *testing.T) {
	store := newTestStore(t)
	inner := &countingClient{}
	client := NewClient(inner, store)

	_, err := client.GetClass("root/cimv2", "missing")
	require.Error(t, err)
	_, found := store.Class("root/cimv2", "missing")
	assert.False(t, found)
}
