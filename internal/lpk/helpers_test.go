package lpk

import (
	"fmt"
	"io/fs"
)

// memContainer is an in-memory Container preserving insertion order.
type memContainer struct {
	names []string
	data  map[string][]byte
}

func newMemContainer() *memContainer {
	return &memContainer{data: make(map[string][]byte)}
}

func (m *memContainer) add(name string, data []byte) *memContainer {
	if _, ok := m.data[name]; !ok {
		m.names = append(m.names, name)
	}
	m.data[name] = data
	return m
}

func (m *memContainer) Names() []string { return m.names }

func (m *memContainer) Read(name string) ([]byte, error) {
	data, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return data, nil
}
