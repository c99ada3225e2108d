// Package testing forces test mode for every package that imports it: no
// PDF service and no sample fallback data.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("SIPERTANI_TEST_MODE", "1")
		_ = os.Setenv("GOTENBERG_URL", "")
		_ = os.Setenv("FALLBACK_SAMPLES", "false")
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
