package must

import (
	"fmt"
	"log/slog"
	"os"
)

// Assert aborts the process when cond is false. Reserved for programmer
// errors that leave no sane way to continue.
func Assert(cond bool, failMessage string) {
	if !cond {
		slog.Error(failMessage)
		os.Exit(1)
	}
}

func Fail(message string) {
	Assert(false, fmt.Sprintf("assertion failed: %s", message))
}
