// Package prompts manages the instructions sent to the reasoning service.
// Each stage has a hardcoded default that an active database override may
// replace, and an immutable output specification that cannot be overridden.
package prompts

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
)

// Stage is a reasoning step that a prompt override targets.
type Stage string

const StageSynthesize Stage = "synthesize"

var stages = []Stage{StageSynthesize}

// Stages returns the valid stages.
func Stages() []Stage {
	return stages
}

// ParseStage validates s as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}

// UnmarshalJSON rejects unknown stage values.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Prompt is a named instruction override. At most one prompt per stage is active.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data for a new override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}
