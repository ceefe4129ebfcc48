package model

// Resource is a collectible world object.
type Resource struct {
	ID     string
	Pos    Vec2
	Amount int
}

// Environment is a stage-specific interactable (a vent, a cave, a
// shrine); its effect is defined by the owning scene.
type Environment struct {
	ID   string
	Kind string
	Pos  Vec2
}

// Village is an ordered-stage settlement.
type Village struct {
	ID   string
	Name string
	Pos  Vec2
}
