// Package normalize rewrites loosely phrased instructions into one of a fixed
// set of canonical instructions. It never picks a tool or builds a command:
// its output is plain text that must still resolve through the rule pipeline.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"lume/internal/domain"
	"lume/internal/target"
)

// DefaultConfidence is the minimum score a canonical instruction needs.
const DefaultConfidence = 0.75

// ErrUnavailable is returned when no language analyzer could be loaded.
var ErrUnavailable = errors.New("normalizer unavailable")

// Validator reports whether the rule pipeline can resolve a canonical
// instruction on its own.
type Validator func(canonical string) bool

type Normalizer struct {
	analyzer Analyzer
	validate Validator
	logger   *slog.Logger
}

// New returns a normalizer. A nil analyzer yields one that always reports
// ErrUnavailable. validate must not be nil.
func New(analyzer Analyzer, validate Validator, logger *slog.Logger) *Normalizer {
	return &Normalizer{analyzer: analyzer, validate: validate, logger: logger}
}

func (n *Normalizer) Available() bool { return n != nil && n.analyzer != nil }

var entityLabels = map[string]bool{"IP": true, "URL": true, "ORG": true, "GPE": true, "PRODUCT": true}

var (
	looksIP     = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	looksDomain = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.[a-z]{2,}`)
)

// Normalize maps text to a canonical instruction. An empty result means the
// caller must use text as is; meta.FallbackReason says why. The returned error
// is only ever ErrUnavailable or an analyzer failure.
func (n *Normalizer) Normalize(text string, threshold float64) (string, domain.NormalizationMeta, error) {
	meta := domain.NormalizationMeta{OriginalInput: text}
	if !n.Available() {
		meta.FallbackReason = "language analyzer not available"
		return "", meta, ErrUnavailable
	}
	if threshold <= 0 {
		threshold = DefaultConfidence
	}

	an, err := n.analyzer.Analyze(strings.ToLower(text))
	if err != nil {
		meta.FallbackReason = "analysis failed: " + err.Error()
		return "", meta, err
	}

	tgt := extractTarget(an, text)
	if tgt == "" {
		meta.FallbackReason = "no target (IP/domain/URL) found in input"
		return "", meta, nil
	}
	meta.Target = tgt

	intent, confidence := scoreIntents(an)
	if intent == nil {
		meta.FallbackReason = "no matching intent detected"
		return "", meta, nil
	}
	meta.Intent = intent.Name
	meta.Confidence = confidence

	if confidence < threshold {
		meta.FallbackReason = fmt.Sprintf("low confidence (%.2f < %.2f)", confidence, threshold)
		return "", meta, nil
	}

	canonical := strings.ReplaceAll(intent.Canonical, "{target}", tgt)
	meta.NormalizedText = canonical
	if !n.validate(canonical) {
		meta.FallbackReason = "rule pipeline cannot resolve the normalized instruction"
		n.logger.Debug("normalization discarded", "canonical", canonical, "intent", intent.Name)
		return "", meta, nil
	}

	meta.Used = true
	n.logger.Debug("instruction normalized", "intent", intent.Name, "confidence", confidence, "canonical", canonical)
	return canonical, meta, nil
}

func extractTarget(an Analysis, original string) string {
	for _, ent := range an.Entities {
		if entityLabels[ent.Label] && looksLikeTarget(ent.Text) {
			return ent.Text
		}
	}
	return target.Extract(original).Value
}

func looksLikeTarget(s string) bool {
	return looksIP.MatchString(s) ||
		looksDomain.MatchString(strings.ToLower(s)) ||
		strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// scoreIntents weighs lemmatized verbs and lemmatized nouns/adjectives (plus
// raw tokens) equally, each normalized by the intent's list size.
func scoreIntents(an Analysis) (*Intent, float64) {
	var verbs, keywords []string
	for _, t := range an.Tokens {
		switch t.Pos {
		case PosVerb:
			verbs = append(verbs, t.Lemma)
		case PosNoun, PosProper, PosAdj:
			keywords = append(keywords, t.Lemma)
		}
	}
	for _, t := range an.Tokens {
		keywords = append(keywords, t.Text)
	}

	var best *Intent
	bestScore := 0.0
	for i := range Intents {
		in := &Intents[i]
		score := 0.5*fraction(verbs, in.Verbs) + 0.5*fraction(keywords, in.Keywords)
		if score > bestScore {
			best, bestScore = in, score
		}
	}
	return best, bestScore
}

// fraction counts how many of got occur in want, relative to len(want), capped at 1.
func fraction(got, want []string) float64 {
	if len(want) == 0 {
		return 0
	}
	hits := 0
	for _, g := range got {
		for _, w := range want {
			if g == w {
				hits++
				break
			}
		}
	}
	f := float64(hits) / float64(len(want))
	if f > 1 {
		f = 1
	}
	return f
}
