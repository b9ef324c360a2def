package crop

import (
	"sync"

	"github.com/google/uuid"
)

// Preview is a temporary local reference to a selected file.
type Preview struct {
	Data        []byte
	ContentType string
}

// PreviewStore hands out short-lived preview handles. Every handle must be released.
type PreviewStore interface {
	Put(data []byte, contentType string) string
	Get(handle string) (Preview, bool)
	Release(handle string)
}

// MemoryPreviews keeps previews in process memory.
type MemoryPreviews struct {
	mu    sync.RWMutex
	items map[string]Preview
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{items: make(map[string]Preview)}
}

func (m *MemoryPreviews) Put(data []byte, contentType string) string {
	h := uuid.NewString()
	m.mu.Lock()
	m.items[h] = Preview{Data: data, ContentType: contentType}
	m.mu.Unlock()
	return h
}

func (m *MemoryPreviews) Get(handle string) (Preview, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[handle]
	return p, ok
}

func (m *MemoryPreviews) Release(handle string) {
	m.mu.Lock()
	delete(m.items, handle)
	m.mu.Unlock()
}

// Active reports how many handles are still held.
func (m *MemoryPreviews) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
