package dialog

import (
	"fmt"
	"log/slog"

	"github.com/jit-rpg/engine/pkg/effect"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/rules"
)

// ConditionEvaluator answers whether a gating condition currently holds.
// The session owns the world state a condition reads, so it supplies the
// implementation.
type ConditionEvaluator interface {
	CheckCondition(c effect.Condition) bool
}

// EffectSink applies engine effects chosen in conversation.
type EffectSink interface {
	ApplyEffect(e effect.Effect)
}

// Engine drives one conversation at a time: closed -> open(node) ->
// open(next) -> closed.
type Engine struct {
	catalog Catalog
	res     *rules.Resolver
	bus     *event.Bus
	logger  *slog.Logger
	eval    ConditionEvaluator
	sink    EffectSink

	active   *Definition
	activeID string
	speaker  string
	current  *NodeView
}

func NewEngine(catalog Catalog, res *rules.Resolver, bus *event.Bus, logger *slog.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		res:     res,
		bus:     bus,
		logger:  logger,
	}
}

// SetHooks wires the condition evaluator and effect dispatcher.
func (e *Engine) SetHooks(eval ConditionEvaluator, sink EffectSink) {
	e.eval = eval
	e.sink = sink
}

// Active reports whether a conversation is open.
func (e *Engine) Active() bool {
	return e.active != nil
}

// Current returns the node being displayed, or nil when closed.
func (e *Engine) Current() *NodeView {
	return e.current
}

// StartDialog opens a conversation at its start node. Unknown ids are
// logged and ignored.
func (e *Engine) StartDialog(dialogID, speakerID string) {
	def, ok := e.catalog.Dialog(dialogID)
	if !ok {
		e.logger.Warn("dialog not found", "dialog_id", dialogID)
		return
	}

	e.active = def
	e.activeID = dialogID
	e.speaker = speakerID

	// Announce before navigating: a dangling start node ends the
	// conversation, and that end must land after the start.
	e.bus.Publish(event.DialogStart, dialogID, speakerID)

	e.GoToNode(def.StartNode)
}

// GoToNode jumps the open conversation to a node, applying its on-enter
// effects and evaluating response availability. A dangling node reference
// ends the conversation instead of crashing.
func (e *Engine) GoToNode(nodeID string) {
	if e.active == nil {
		return
	}

	node, ok := e.active.Nodes[nodeID]
	if !ok {
		e.logger.Warn("dialog node not found", "dialog_id", e.activeID, "node", nodeID)
		e.EndDialog()
		return
	}

	view := &NodeView{ID: nodeID, Node: node}

	if len(node.OnEnter) > 0 {
		e.applyEffects(node.OnEnter)
	}

	view.Responses = make([]VisibleResponse, len(node.Responses))
	for i, resp := range node.Responses {
		view.Responses[i] = VisibleResponse{
			Response:   resp,
			Available:  e.checkConditions(resp.Conditions),
			CheckLabel: checkLabel(resp),
		}
	}
	e.current = view

	e.bus.Publish(event.DialogAdvance, view, e.speaker)
}

// SelectResponse picks a response by index. Unavailable or out-of-range
// selections are ignored. A response with an inline skill check resolves
// it first: the response's own effects apply only on the success branch.
func (e *Engine) SelectResponse(index int) {
	if e.current == nil {
		return
	}
	if index < 0 || index >= len(e.current.Responses) {
		return
	}
	resp := e.current.Responses[index]
	if !resp.Available {
		return
	}

	if resp.SkillCheck != nil {
		result := e.res.SkillCheck(resp.SkillCheck.Skill, resp.SkillCheck.Difficulty)

		if result.Success {
			e.bus.Publish(event.UIMessage, event.MsgAction,
				fmt.Sprintf("[%s check passed: %d/%d]", result.SkillName, result.Roll, result.Target))
			if resp.SkillCheck.SuccessNode != "" {
				e.applyEffects(resp.Effects)
				e.GoToNode(resp.SkillCheck.SuccessNode)
				return
			}
		} else {
			e.bus.Publish(event.UIMessage, event.MsgWarning,
				fmt.Sprintf("[%s check failed: %d/%d]", result.SkillName, result.Roll, result.Target))
			if resp.SkillCheck.FailNode != "" {
				e.GoToNode(resp.SkillCheck.FailNode)
				return
			}
		}
	}

	e.applyEffects(resp.Effects)

	if resp.NextNode != "" {
		e.GoToNode(resp.NextNode)
	} else {
		e.EndDialog()
	}

	e.bus.Publish(event.DialogChoice, resp.Response)
}

// EndDialog closes the conversation.
func (e *Engine) EndDialog() {
	ended := e.activeID
	e.active = nil
	e.activeID = ""
	e.speaker = ""
	e.current = nil

	e.bus.Publish(event.DialogEnd, ended)
	e.bus.Publish(event.UIUpdate)
}

func (e *Engine) checkConditions(conds []effect.Condition) bool {
	if len(conds) == 0 {
		return true
	}
	if e.eval == nil {
		e.logger.Warn("no condition evaluator wired, hiding gated response")
		return false
	}
	for _, c := range conds {
		if !e.eval.CheckCondition(c) {
			return false
		}
	}
	return true
}

func (e *Engine) applyEffects(effects []effect.Effect) {
	if len(effects) == 0 {
		return
	}
	for _, ef := range effects {
		if e.sink == nil {
			e.logger.Warn("no effect sink wired, dropping dialog effect", "kind", ef.Kind)
			continue
		}
		e.sink.ApplyEffect(ef)
	}
	e.bus.Publish(event.UIUpdate)
}

// checkLabel derives the bracketed tag shown next to checked or gated
// responses, e.g. "[speech 40]" or "[wits 7+]".
func checkLabel(resp Response) string {
	if resp.SkillCheck != nil {
		return fmt.Sprintf("[%s %d]", resp.SkillCheck.Skill, resp.SkillCheck.Difficulty)
	}
	for _, c := range resp.Conditions {
		switch c.Kind {
		case effect.CondAttribute:
			return fmt.Sprintf("[%s %d+]", c.Attribute, c.Min)
		case effect.CondSkill:
			return fmt.Sprintf("[%s %d+]", c.Skill, c.Min)
		}
	}
	return ""
}
