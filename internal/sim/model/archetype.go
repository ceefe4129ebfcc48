package model

import "fmt"

// Archetype is the entity specialization chosen at game start.
type Archetype string

const (
	ArchetypeStrong     Archetype = "strong"
	ArchetypeMeek       Archetype = "meek"
	ArchetypeAllRounder Archetype = "allRounder"
)

var Archetypes = []Archetype{ArchetypeStrong, ArchetypeMeek, ArchetypeAllRounder}

func ParseArchetype(s string) (Archetype, error) {
	switch Archetype(s) {
	case ArchetypeStrong, ArchetypeMeek, ArchetypeAllRounder:
		return Archetype(s), nil
	}
	return "", fmt.Errorf("unknown archetype %q", s)
}

func (a Archetype) Valid() bool {
	_, err := ParseArchetype(string(a))
	return err == nil
}
