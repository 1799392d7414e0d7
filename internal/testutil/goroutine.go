// Package testutil holds small helpers shared by long-running tests.
package testutil

import (
	"runtime"
	"testing"
	"time"
)

// AssertNoGoroutineLeaks polls until the goroutine count drops back to
// baseline plus margin, failing the test if it has not settled after ten
// seconds. Frame loops and ingest readers stop asynchronously, so a short
// grace period is needed between shutdown and the final count.
func AssertNoGoroutineLeaks(t *testing.T, baseline, margin int) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		n := runtime.NumGoroutine()
		if n <= baseline+margin {
			return
		}
		if time.Now().After(deadline) {
			t.Errorf("goroutines did not settle: started with %d, still running %d (margin %d)", baseline, n, margin)
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
