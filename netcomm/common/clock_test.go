package common

import (
	"sync"
	"testing"
)

// TestLogicalClockStrictlyIncreasing tests that successive ticks grow even
// when drawn faster than the wall clock advances
func TestLogicalClockStrictlyIncreasing(t *testing.T) {
	clock := NewLogicalClock()

	last := clock.Next()
	for i := 0; i < 10000; i++ {
		next := clock.Next()
		if next <= last {
			t.Fatalf("tick %d did not increase: %d after %d", i, next, last)
		}
		last = next
	}
}

// TestLogicalClockConcurrent tests that concurrent ticks are unique
func TestLogicalClockConcurrent(t *testing.T) {
	clock := NewLogicalClock()

	const goroutines = 8
	const ticksEach = 2000

	var wg sync.WaitGroup
	results := make([][]uint64, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ticks := make([]uint64, ticksEach)
			for i := range ticks {
				ticks[i] = clock.Next()
			}
			results[g] = ticks
		}(g)
	}
	wg.Wait()

	seen := make(map[uint64]struct{}, goroutines*ticksEach)
	for _, ticks := range results {
		for _, tick := range ticks {
			if _, dup := seen[tick]; dup {
				t.Fatalf("duplicate tick %d", tick)
			}
			seen[tick] = struct{}{}
		}
	}
}

// TestTimeStampRoundTrip tests the header encoding of timestamps
func TestTimeStampRoundTrip(t *testing.T) {
	clock := NewLogicalClock()
	ts := clock.Next()

	decoded, err := DecodeTimeStamp(EncodeTimeStamp(ts))
	if err != nil {
		t.Fatalf("failed to decode timestamp: %v", err)
	}
	if decoded != ts {
		t.Errorf("timestamp changed in transit: %d != %d", decoded, ts)
	}
}
