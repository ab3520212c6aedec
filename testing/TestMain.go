// Package testing is imported for its side effect by packages whose tests
// touch the binaries or the config loader.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var defaults = map[string]string{
	"ADMIN_TEST_MODE": "1",
	"JWT_SECRET":      "test-secret",
	"LOG_LEVEL":       "error",
}

var applyDefaults = sync.OnceFunc(func() {
	for key, value := range defaults {
		if _, ok := os.LookupEnv(key); !ok {
			_ = os.Setenv(key, value)
		}
	}
})

func init() {
	applyDefaults()
}

// TestMain is reused by packages that do not define their own.
func TestMain(m *stdtesting.M) {
	applyDefaults()
	os.Exit(m.Run())
}
