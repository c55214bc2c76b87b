package client

import "sync"

// BackupStore is the local fallback cache for workspace content, keyed by
// the page address without its fragment. It carries no server-side
// guarantees; it only covers the offline-first restore path.
type BackupStore interface {
	Put(pageURL, xml string)
	Get(pageURL string) (string, bool)
}

// MemoryBackupStore is a mutex-guarded in-process BackupStore.
type MemoryBackupStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackupStore returns an empty store.
func NewMemoryBackupStore() *MemoryBackupStore {
	return &MemoryBackupStore{data: make(map[string]string)}
}

func (s *MemoryBackupStore) Put(pageURL, xml string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[pageURL] = xml
}

func (s *MemoryBackupStore) Get(pageURL string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	xml, ok := s.data[pageURL]
	return xml, ok
}

var _ BackupStore = (*MemoryBackupStore)(nil)
