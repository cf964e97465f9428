package hosttimer_test

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection: every runtime host a test creates
// must release its tickers and dispatcher on Close.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go-redis redials in the background after repeated dial failures.
		goleak.IgnoreAnyFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).tryDial"),
	)
}
