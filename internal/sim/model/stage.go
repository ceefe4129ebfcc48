package model

import "fmt"

// Stage is one of the three progression phases of a run.
type Stage string

const (
	StagePrimordial  Stage = "primordial"
	StagePrehistoric Stage = "prehistoric"
	StageOrdered     Stage = "ordered"
)

// Stages lists the progression phases in play order.
var Stages = []Stage{StagePrimordial, StagePrehistoric, StageOrdered}

// InitialStage is where every run starts, regardless of persisted progress.
const InitialStage = StagePrimordial

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StagePrimordial, StagePrehistoric, StageOrdered:
		return Stage(s), nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

func (s Stage) Valid() bool {
	_, err := ParseStage(string(s))
	return err == nil
}

// Next returns the stage after s, or false when s is the final stage.
func (s Stage) Next() (Stage, bool) {
	for i, st := range Stages {
		if st == s && i+1 < len(Stages) {
			return Stages[i+1], true
		}
	}
	return "", false
}

func (s Stage) Final() bool {
	return s == Stages[len(Stages)-1]
}

// Index returns the zero-based position of s in play order, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}
