package must

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// PrintDebugJSON dumps a value as indented JSON on stdout, e.g. an impact
// mapping behind a debug flag.
func PrintDebugJSON(a any) {
	jsn, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		slog.Error("failed to print debug json", "err", err)
		return
	}

	fmt.Println(string(jsn))
}
