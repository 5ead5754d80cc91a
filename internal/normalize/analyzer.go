package normalize

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

// Coarse parts of speech used by intent scoring.
const (
	PosVerb   = "VERB"
	PosNoun   = "NOUN"
	PosProper = "PROPN"
	PosAdj    = "ADJ"
	PosOther  = "X"
)

type Token struct {
	Text  string
	Lemma string
	Pos   string
}

type Entity struct {
	Text  string
	Label string
}

type Analysis struct {
	Tokens   []Token
	Entities []Entity
}

// Analyzer tags, lemmatizes and extracts entities from text.
type Analyzer interface {
	Analyze(text string) (Analysis, error)
}

// ProseAnalyzer tags with prose's averaged perceptron and lemmatizes with
// golem's English dictionary.
type ProseAnalyzer struct {
	lemmatizer *golem.Lemmatizer
}

// NewProseAnalyzer loads the English lemma dictionary.
func NewProseAnalyzer() (*ProseAnalyzer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}
	return &ProseAnalyzer{lemmatizer: l}, nil
}

func (a *ProseAnalyzer) Analyze(text string) (Analysis, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}

	var out Analysis
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		out.Tokens = append(out.Tokens, Token{
			Text:  word,
			Lemma: a.lemmatizer.Lemma(word),
			Pos:   coarsePos(tok.Tag),
		})
	}
	for _, ent := range doc.Entities() {
		out.Entities = append(out.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	return out, nil
}

// coarsePos folds Penn Treebank tags into the four classes scoring uses.
func coarsePos(tag string) string {
	switch {
	case strings.HasPrefix(tag, "VB"):
		return PosVerb
	case tag == "NNP" || tag == "NNPS":
		return PosProper
	case strings.HasPrefix(tag, "NN"):
		return PosNoun
	case strings.HasPrefix(tag, "JJ"):
		return PosAdj
	default:
		return PosOther
	}
}
