package git

import "sync"

// lazy computes a value at most once per successful call. A failed
// computation is not cached, so the next Get retries.
type lazy[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
}

func (l *lazy[T]) Get(compute func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return l.val, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	l.val = v
	l.done = true
	return v, nil
}
