package cache

import (
	"sync"
	"time"
)

// MemCache is an in-memory TTL cache backed by sync.Map. A background
// cleanup goroutine runs when NewMemCache is given a positive cleanupInterval.
type MemCache[V any] struct {
	items    sync.Map
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type item[V any] struct {
	value      V
	expiration int64 // unix nano; 0 means no expiration
}

func NewMemCache[V any](cleanupInterval time.Duration) *MemCache[V] {
	m := &MemCache[V]{
		stop: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		m.wg.Add(1)
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			defer m.wg.Done()
			for {
				select {
				case <-ticker.C:
					m.cleanup()
				case <-m.stop:
					return
				}
			}
		}()
	}
	return m
}

func (m *MemCache[V]) Set(key string, value V, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	m.items.Store(key, &item[V]{
		value:      value,
		expiration: exp,
	})
}

func (m *MemCache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := m.items.Load(key)
	if !ok {
		return zero, false
	}
	it := v.(*item[V])
	if it.isExpired(time.Now().UnixNano()) {
		m.items.Delete(key)
		return zero, false
	}
	return it.value, true
}

// GetOrSet returns the live value for key, storing the result of create
// when there is none. create may run more than once under contention; only
// one result is kept.
func (m *MemCache[V]) GetOrSet(key string, ttl time.Duration, create func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	actual, loaded := m.items.LoadOrStore(key, &item[V]{value: create(), expiration: exp})
	it := actual.(*item[V])
	if loaded && it.isExpired(time.Now().UnixNano()) {
		fresh := &item[V]{value: create(), expiration: exp}
		m.items.Store(key, fresh)
		return fresh.value
	}
	return it.value
}

func (m *MemCache[V]) Delete(key string) {
	m.items.Delete(key)
}

// Flush drops every entry.
func (m *MemCache[V]) Flush() {
	m.items.Range(func(k, _ any) bool {
		m.items.Delete(k)
		return true
	})
}

func (m *MemCache[V]) Len() int {
	n := 0
	now := time.Now().UnixNano()
	m.items.Range(func(_, v any) bool {
		if !v.(*item[V]).isExpired(now) {
			n++
		}
		return true
	})
	return n
}

func (m *MemCache[V]) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
}

func (it *item[V]) isExpired(now int64) bool {
	return it.expiration != 0 && now > it.expiration
}

func (m *MemCache[V]) cleanup() {
	now := time.Now().UnixNano()
	m.items.Range(func(k, v any) bool {
		if v.(*item[V]).isExpired(now) {
			m.items.Delete(k)
		}
		return true
	})
}
