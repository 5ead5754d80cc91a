package engine

import (
	"golang.org/x/text/cases"

	"lume/internal/domain"
	"lume/internal/intent"
	"lume/internal/plugin"
	"lume/internal/target"
)

// Stage names the resolution step that produced a tool.
type Stage string

const (
	StageFast       Stage = "fast"
	StageHeuristic  Stage = "heuristic"
	StageFallback   Stage = "fallback"
	StageUnresolved Stage = "unresolved"
)

// FallbackTool is used when a target was found but nothing else matched.
const FallbackTool = "nmap"

const (
	fastConfidence     = 100
	fallbackConfidence = 50
)

// Resolution is the outcome of mapping one instruction to a tool.
type Resolution struct {
	Instruction string
	Stage       Stage
	Tool        string
	Confidence  int
	Target      domain.Target
	Hints       domain.Hints
	Rule        *domain.Rule   // fast stage only
	Intent      *domain.Intent // heuristic stage only
}

func (r Resolution) Resolved() bool { return r.Stage != StageUnresolved }

// Resolve runs the fast matcher, then the heuristic scorer, then the generic
// fallback. The heuristic never runs when a rule matched.
func (e *Engine) Resolve(instruction string) Resolution {
	folded := cases.Fold().String(instruction)
	res := Resolution{
		Instruction: instruction,
		Stage:       StageUnresolved,
		Target:      target.Extract(instruction),
	}

	if rule := e.rules.Match(folded); rule != nil {
		res.Stage = StageFast
		res.Tool = rule.Tool
		res.Confidence = fastConfidence
		res.Rule = rule
		res.Hints = plugin.ExtractHints(rule.Tool, folded).Merge(rule.Hints)
		e.logger.Debug("fast match", "rule", rule.Name, "tool", rule.Tool)
		return res
	}

	if in, ok := e.scorer.Score(folded, res.Target); ok {
		if in.Confidence >= intent.MinConfidence {
			res.Stage = StageHeuristic
			res.Tool = in.Tool
			res.Confidence = in.Confidence
			res.Intent = &in
			res.Hints = plugin.ExtractHints(in.Tool, folded)
			return res
		}
		e.logger.Debug("heuristic below floor", "tool", in.Tool, "confidence", in.Confidence)
	}

	if res.Target.Found() {
		res.Stage = StageFallback
		res.Tool = FallbackTool
		res.Confidence = fallbackConfidence
		res.Hints = plugin.ExtractHints(FallbackTool, folded)
	}
	return res
}

// Parses reports whether instruction resolves through a rule or the
// heuristic scorer with a target. It is the round-trip check applied to
// normalized text.
func (e *Engine) Parses(instruction string) bool {
	res := e.Resolve(instruction)
	return (res.Stage == StageFast || res.Stage == StageHeuristic) && res.Target.Found()
}
