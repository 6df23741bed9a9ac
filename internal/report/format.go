package report

import (
	"fmt"

	"github.com/vk/monoplan/internal/planner"
)

// Mode selects a report encoding.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Format renders the report list in the requested mode.
func Format(reports []planner.TaskReport, mode Mode) (string, error) {
	switch mode {
	case ModeText:
		return Text(reports)
	case ModeJSON:
		return JSON(reports)
	default:
		return "", fmt.Errorf("unknown report mode '%s'", mode)
	}
}
