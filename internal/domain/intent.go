package domain

// Intent is an ephemeral (tool, confidence) decision made by the heuristic scorer.
type Intent struct {
	Tool       string
	Confidence int // 0-100
	Target     string
	TargetType TargetType
	Action     string
	Reasoning  string
}
