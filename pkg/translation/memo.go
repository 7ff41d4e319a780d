package translation

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// detectMemo is a bounded LRU of text -> detected language.
type detectMemo struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// newDetectMemo returns nil when size is not positive, which disables memoization.
func newDetectMemo(size int) *detectMemo {
	if size <= 0 {
		return nil
	}
	return &detectMemo{cache: lru.New(size)}
}

func (m *detectMemo) get(text string) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.cache.Get(text)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (m *detectMemo) add(text, lang string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(text, lang)
}

func (m *detectMemo) len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Len()
}
