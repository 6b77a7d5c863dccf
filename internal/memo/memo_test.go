package memo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if Key("day", "2023-05-29", "CBC 1-8") != Key("day", "2023-05-29", "CBC 1-8") {
		t.Error("Key() is not deterministic")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() ignores part boundaries")
	}
	if Key("day", "2023-05-29", "CBC 1-8") == Key("day", "2023-05-29", "CBC 10-12") {
		t.Error("Key() ignores the room")
	}
}

func TestDoMemoizes(t *testing.T) {
	c, err := New(Options[int]{TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Do(context.Background(), Key("x"), fn)
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if v != 42 {
			t.Errorf("Do() = %d, expected 42", v)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}
}

func TestDoDoesNotMemoizeErrors(t *testing.T) {
	c, err := New(Options[int]{TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	boom := errors.New("boom")
	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		return 0, boom
	}

	for i := 0; i < 2; i++ {
		if _, err := c.Do(context.Background(), Key("x"), fn); !errors.Is(err, boom) {
			t.Errorf("Do() error = %v, expected boom", err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, expected 2", calls)
	}
}

func TestInvalidate(t *testing.T) {
	c, err := New(Options[string]{TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Set(Key("a"), "first")
	if v, ok := c.Get(Key("a")); !ok || v != "first" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}

	c.Invalidate()
	if _, ok := c.Get(Key("a")); ok {
		t.Error("value survived Invalidate()")
	}

	v, err := c.Do(context.Background(), Key("a"), func(context.Context) (string, error) { return "second", nil })
	if err != nil || v != "second" {
		t.Errorf("Do() after Invalidate = %q, %v", v, err)
	}
}

func TestTTLExpiry(t *testing.T) {
	c, err := New(Options[int]{TTL: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Set(Key("a"), 1)
	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Get(Key("a")); ok {
		t.Error("value survived its TTL")
	}
}

func TestDoSharesInFlightCalls(t *testing.T) {
	c, err := New(Options[int]{TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Do(context.Background(), Key("slow"), fn); err != nil || v != 7 {
				t.Errorf("Do() = %d, %v", v, err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, expected 1", n)
	}
}

func TestDoCallerCancellation(t *testing.T) {
	c, err := New(Options[int]{TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (int, error) {
		close(started)
		select {
		case <-release:
			return 9, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Do(first, Key("shared"), fn)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := c.Do(context.Background(), Key("shared"), fn)
		second <- result{v, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, expected context.Canceled", err)
	}

	close(release)
	res := <-second
	if res.err != nil || res.v != 9 {
		t.Errorf("live caller Do() = %d, %v, expected 9, nil", res.v, res.err)
	}
	if v, ok := c.Get(Key("shared")); !ok || v != 9 {
		t.Errorf("Get() = %d, %v, expected the shared result to be memoized", v, ok)
	}
}
