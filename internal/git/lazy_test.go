package git

import (
	"errors"
	"testing"
)

func TestLazy_CachesOnlySuccess(t *testing.T) {
	t.Parallel()

	var l lazy[int]
	calls := 0
	fail := errors.New("fail")

	if _, err := l.Get(func() (int, error) { calls++; return 0, fail }); !errors.Is(err, fail) {
		t.Fatalf("expected failure, got %v", err)
	}
	v, err := l.Get(func() (int, error) { calls++; return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Get = %d, %v", v, err)
	}
	v, err = l.Get(func() (int, error) { calls++; return 9, nil })
	if err != nil || v != 7 {
		t.Fatalf("cached Get = %d, %v", v, err)
	}
	if calls != 2 {
		t.Fatalf("compute called %d times, want 2", calls)
	}
}
