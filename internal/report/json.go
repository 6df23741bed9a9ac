package report

import (
	"encoding/json"
	"fmt"

	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/planner"
)

// document is the machine-readable report: the whole task list as one JSON
// object. Field order follows struct declaration order and is stable.
type document struct {
	Tasks []taskSummary `json:"tasks"`
}

type taskSummary struct {
	Task       string     `json:"task"`
	Hash       string     `json:"hash"`
	CacheState cacheState `json:"cacheState"`
	Command    string     `json:"command"`
	Outputs    []string   `json:"outputs"`
	// ExcludedOutputs stays nil (JSON null) when no negated globs are
	// configured, never an empty list.
	ExcludedOutputs        []string                      `json:"excludedOutputs"`
	LogFile                string                        `json:"logFile"`
	Dependencies           []string                      `json:"dependencies"`
	Dependents             []string                      `json:"dependents"`
	ResolvedTaskDefinition config.ResolvedTaskDefinition `json:"resolvedTaskDefinition"`
}

type cacheState struct {
	Local  bool `json:"local"`
	Remote bool `json:"remote"`
}

// JSON renders the report list as one indented JSON document.
func JSON(reports []planner.TaskReport) (string, error) {
	doc := document{Tasks: make([]taskSummary, 0, len(reports))}
	for _, r := range reports {
		doc.Tasks = append(doc.Tasks, taskSummary{
			Task:                   r.Task,
			Hash:                   string(r.Hash),
			CacheState:             cacheState{Local: r.CacheState.Local, Remote: r.CacheState.Remote},
			Command:                r.Command,
			Outputs:                r.Outputs,
			ExcludedOutputs:        r.ExcludedOutputs,
			LogFile:                r.LogFile,
			Dependencies:           r.Dependencies,
			Dependents:             r.Dependents,
			ResolvedTaskDefinition: r.ResolvedTaskDefinition,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report document: %w", err)
	}
	return string(data) + "\n", nil
}
