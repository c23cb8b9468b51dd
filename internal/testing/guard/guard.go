package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("OKEAN_TEST_MODE") == "" {
			_ = os.Setenv("OKEAN_TEST_MODE", "1")
		}
	})
}
