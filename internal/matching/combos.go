package matching

import (
	"fmt"

	"talent-match/internal/graph"
)

// Combo describes one comparison axis between a job and a candidate: which
// job-side relationship is compared against which candidate-side
// relationship, and the weight its similarity carries in the enhanced score.
type Combo struct {
	Key          string
	JobRel       string
	CandidateRel string
	Weight       float64
}

// comboTable maps combo keys to their relationship pairs. Adding an axis
// means adding a row here and a score column in the match table.
var comboTable = map[string]Combo{
	"A": {Key: "A", JobRel: graph.RelRequiresSkill, CandidateRel: graph.RelHasSkill, Weight: 0.15},
	"B": {Key: "B", JobRel: graph.RelRequiresSkill, CandidateRel: graph.RelHasSoftSkill, Weight: 0.05},
	"C": {Key: "C", JobRel: graph.RelRequiredCert, CandidateRel: graph.RelHasCertification, Weight: 0.10},
	"D": {Key: "D", JobRel: graph.RelRequiredCert, CandidateRel: graph.RelStudiedAt, Weight: 0.10},
	"E": {Key: "E", JobRel: graph.RelHasResponsibility, CandidateRel: graph.RelWorkedAt, Weight: 0.10},
	"F": {Key: "F", JobRel: graph.RelSuitableForRole, CandidateRel: graph.RelWorkedAt, Weight: 0.10},
}

// originalScoreWeight is the weight of the whole-document similarity score
// in the enhanced blend. The combo weights above plus this sum to 1.
const originalScoreWeight = 0.40

// comboKeys lists the combo identifiers in evaluation order.
var comboKeys = []string{"A", "B", "C", "D", "E", "F"}

// ResolveCombo looks up a combo by key.
func ResolveCombo(key string) (Combo, error) {
	c, ok := comboTable[key]
	if !ok {
		return Combo{}, fmt.Errorf("unknown match combo %q", key)
	}
	return c, nil
}

// AllCombos returns every combo in evaluation order.
func AllCombos() []Combo {
	combos := make([]Combo, 0, len(comboKeys))
	for _, k := range comboKeys {
		combos = append(combos, comboTable[k])
	}
	return combos
}
