package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/monoplan/internal/planner"
)

// labelWidth pads every label to the longest one, "ResolvedTaskDefinition",
// so the '=' column lines up across the block.
const labelWidth = 22

// Text renders one aligned block per task, preceded by a task count line.
// Empty lists render as empty strings, not "none".
func Text(reports []planner.TaskReport) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Tasks to Run: %d\n", len(reports))

	for _, r := range reports {
		definition, err := json.Marshal(r.ResolvedTaskDefinition)
		if err != nil {
			return "", fmt.Errorf("failed to encode resolved definition for '%s': %w", r.Task, err)
		}

		fmt.Fprintf(&b, "\n%s\n", r.Task)
		writeField(&b, "Task", r.Task)
		writeField(&b, "Hash", string(r.Hash))
		writeField(&b, "Cached (Local)", strconv.FormatBool(r.CacheState.Local))
		writeField(&b, "Cached (Remote)", strconv.FormatBool(r.CacheState.Remote))
		writeField(&b, "Command", r.Command)
		writeField(&b, "Outputs", strings.Join(r.Outputs, ", "))
		writeField(&b, "Log File", r.LogFile)
		writeField(&b, "Dependencies", strings.Join(r.Dependencies, ", "))
		// Label spelling is part of the output contract.
		writeField(&b, "Dependendents", strings.Join(r.Dependents, ", "))
		writeField(&b, "ResolvedTaskDefinition", string(definition))
	}
	return b.String(), nil
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %-*s = %s\n", labelWidth, label, value)
}
