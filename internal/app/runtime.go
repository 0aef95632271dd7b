package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "TASKTRACK_TEST_MODE"

// InTestMode reports whether binaries should skip startup side effects. The
// flag is read once per process.
var InTestMode = sync.OnceValue(func() bool {
	return parseTestMode(os.Getenv(testModeEnv))
})

func parseTestMode(raw string) bool {
	on, err := strconv.ParseBool(raw)
	return err == nil && on
}
