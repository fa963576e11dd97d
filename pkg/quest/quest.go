// Package quest tracks stage-based quest progression. Each quest instance
// moves through active -> completed or failed; objectives advance in response
// to domain events routed in by the world state.
package quest

import (
	"github.com/jit-rpg/engine/pkg/effect"
)

// State is the lifecycle state of a quest instance. Completed and failed
// are terminal.
type State string

const (
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ObjectiveKind names what kind of game event advances an objective.
type ObjectiveKind string

const (
	ObjectiveTalk  ObjectiveKind = "talk"
	ObjectiveKill  ObjectiveKind = "kill"
	ObjectiveFetch ObjectiveKind = "fetch"
	ObjectiveGo    ObjectiveKind = "go"
)

// ObjectiveKinds lists every valid kind, for content validation.
var ObjectiveKinds = []ObjectiveKind{ObjectiveTalk, ObjectiveKill, ObjectiveFetch, ObjectiveGo}

// Objective is a single countable goal within a quest stage.
type Objective struct {
	Kind        ObjectiveKind `json:"type" yaml:"type"`
	Target      string        `json:"target" yaml:"target"`
	Count       int           `json:"count" yaml:"count"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Stage is one step of a quest: a set of objectives plus what happens when
// they are all met.
type Stage struct {
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Objectives  []Objective     `json:"objectives" yaml:"objectives"`
	OnComplete  []effect.Effect `json:"on_complete,omitempty" yaml:"on_complete,omitempty"`
	NextStage   string          `json:"next_stage,omitempty" yaml:"next_stage,omitempty"`
}

// Rewards is the bundle granted when a quest completes.
type Rewards struct {
	XP    int      `json:"xp,omitempty" yaml:"xp,omitempty"`
	Caps  int      `json:"caps,omitempty" yaml:"caps,omitempty"`
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// Definition is the authored shape of a quest.
type Definition struct {
	ID              string            `json:"id" yaml:"id"`
	Title           string            `json:"title" yaml:"title"`
	Description     string            `json:"description" yaml:"description"`
	StartStage      string            `json:"start_stage" yaml:"start_stage"`
	Stages          map[string]*Stage `json:"stages" yaml:"stages"`
	Rewards         *Rewards          `json:"rewards,omitempty" yaml:"rewards,omitempty"`
	CompleteMessage string            `json:"complete_message,omitempty" yaml:"complete_message,omitempty"`
}

// Catalog resolves quest ids to definitions.
type Catalog interface {
	Quest(id string) (*Definition, bool)
}

// ObjectiveProgress is an objective plus its live counter.
type ObjectiveProgress struct {
	Objective `yaml:",inline"`
	Current   int `json:"current" yaml:"current"`
}

// Instance is the runtime state of one started quest.
type Instance struct {
	State        State               `json:"state" yaml:"state"`
	CurrentStage string              `json:"current_stage" yaml:"current_stage"`
	Objectives   []ObjectiveProgress `json:"objectives" yaml:"objectives"`
}
