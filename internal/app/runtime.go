package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "ADMIN_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	return on
})

// InTestMode reports whether the binaries were started by the test harness.
// They return before dialing Postgres or Redis in that case.
func InTestMode() bool {
	return testMode()
}
