package timer

import (
	"sync"
	"time"
)

// Handle — отложенный вызов, который можно отменить до срабатывания.
type Handle struct {
	mu   sync.Mutex
	t    *time.Timer
	done bool
}

// Schedule запускает fn через delay в отдельной горутине.
func Schedule(delay time.Duration, fn func()) *Handle {
	h := &Handle{}
	h.t = time.AfterFunc(delay, func() {
		h.mu.Lock()
		if h.done {
			h.mu.Unlock()
			return
		}
		h.done = true
		h.mu.Unlock()
		fn()
	})
	return h
}

// Stop отменяет вызов. Возвращает false, если fn уже выполнена либо
// Handle уже остановлен; true гарантирует, что fn не будет вызвана.
func (h *Handle) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return false
	}
	h.done = true
	h.t.Stop()
	return true
}
