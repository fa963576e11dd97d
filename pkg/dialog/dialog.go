// Package dialog runs branching conversation trees: nodes with gated
// responses, inline skill checks, and effects that feed back into the
// rest of the engine.
package dialog

import (
	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/effect"
)

// SkillCheck is an inline dice check attached to a response. On success
// the conversation moves to SuccessNode, on failure to FailNode; a missing
// node falls through to the response's normal routing.
type SkillCheck struct {
	Skill       actor.Skill `json:"skill" yaml:"skill"`
	Difficulty  int         `json:"difficulty" yaml:"difficulty"`
	SuccessNode string      `json:"success_node,omitempty" yaml:"success_node,omitempty"`
	FailNode    string      `json:"fail_node,omitempty" yaml:"fail_node,omitempty"`
}

// Response is one selectable line. An empty NextNode ends the dialog.
type Response struct {
	Text       string             `json:"text" yaml:"text"`
	NextNode   string             `json:"next_node,omitempty" yaml:"next_node,omitempty"`
	Conditions []effect.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Effects    []effect.Effect    `json:"effects,omitempty" yaml:"effects,omitempty"`
	SkillCheck *SkillCheck        `json:"skill_check,omitempty" yaml:"skill_check,omitempty"`
}

// Node is one screen of conversation.
type Node struct {
	Speaker   string          `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Text      string          `json:"text" yaml:"text"`
	OnEnter   []effect.Effect `json:"on_enter,omitempty" yaml:"on_enter,omitempty"`
	Responses []Response      `json:"responses" yaml:"responses"`
}

// Definition is a full conversation graph.
type Definition struct {
	ID        string           `json:"id" yaml:"id"`
	StartNode string           `json:"start_node" yaml:"start_node"`
	Nodes     map[string]*Node `json:"nodes" yaml:"nodes"`
}

// Catalog resolves dialog ids to definitions.
type Catalog interface {
	Dialog(id string) (*Definition, bool)
}

// VisibleResponse is a response annotated for presentation: whether the
// player currently qualifies for it, and a short bracketed tag for
// checked or gated options.
type VisibleResponse struct {
	Response
	Available  bool
	CheckLabel string
}

// NodeView is the current node plus its evaluated response list.
type NodeView struct {
	ID        string
	Node      *Node
	Responses []VisibleResponse
}
