package dispatch

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/averde/docnet/netcomm/common"
)

// TestFutureCompletesOnce tests that only the first completion wins, no
// matter how many goroutines race for it
func TestFutureCompletesOnce(t *testing.T) {
	f := newFuture()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		status := 200 + i
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.complete(common.Response{StatusCode: status})
		}()
	}
	wg.Wait()

	first := f.Get()
	if second := f.Get(); !reflect.DeepEqual(second, first) {
		t.Errorf("result changed between reads: %+v vs %+v", first, second)
	}
}

// TestFutureResultBeforeCompletion tests the non-blocking result probe
func TestFutureResultBeforeCompletion(t *testing.T) {
	f := newFuture()

	if _, done := f.Result(); done {
		t.Fatal("future reported done before completion")
	}

	f.complete(common.Response{StatusCode: 200})

	resp, done := f.Result()
	if !done {
		t.Fatal("future not done after completion")
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

// TestFutureWaitContext tests that Wait honors context cancellation
func TestFutureWaitContext(t *testing.T) {
	f := newFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := f.Wait(ctx); err == nil {
		t.Error("expected a context error on an unfulfilled future")
	}
}

// TestFutureOnCompleteAfterFulfillment tests that a continuation attached
// after fulfillment fires immediately with the stored value
func TestFutureOnCompleteAfterFulfillment(t *testing.T) {
	f := newFuture()
	f.complete(common.Response{StatusCode: 204})

	got := make(chan common.Response, 1)
	f.OnComplete(func(resp common.Response) {
		got <- resp
	})

	select {
	case resp := <-got:
		if resp.StatusCode != 204 {
			t.Errorf("expected status 204, got %d", resp.StatusCode)
		}
	case <-time.After(time.Second):
		t.Fatal("continuation never fired")
	}
}
