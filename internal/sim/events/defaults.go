package events

import "github.com/rawlph/floodgame/internal/sim/model"

// DefaultCatalog is the built-in narrative catalog, used when no
// events.yaml is supplied.
func DefaultCatalog() *Catalog {
	return &Catalog{ByStage: map[model.Stage][]Definition{
		model.StagePrimordial: {
			{
				ID:          "drifting_spore",
				Title:       "The Drifting Spore",
				Description: "A smaller organism drifts past, caught in a dying current.",
				Choices: []Choice{
					{
						Text:     "Nudge it toward warmer water",
						Outcome:  "It pulses faintly, then swims on. Something in you settles.",
						Category: CategoryCompassion,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "compassion", Amount: 0.3},
						},
					},
					{
						Text:     "Consume it",
						Outcome:  "Nutrients flood your membrane. The current moves on without witness.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 8},
						},
					},
				},
			},
			{
				ID:          "strange_vent",
				Title:       "The Strange Vent",
				Description: "Mineral smoke rises from a crack in the sea floor. It hums.",
				Choices: []Choice{
					{
						Text:     "Drift closer and study the hum",
						Outcome:  "Patterns. There are patterns in everything, if you watch long enough.",
						Category: CategoryCuriosity,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "curiosity", Amount: 0.3},
						},
					},
					{
						Text:     "Harvest the minerals quickly",
						Outcome:  "You scrape what you can before the heat becomes unbearable.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 10},
							{Kind: EffectAddTime, Seconds: -5},
						},
					},
				},
			},
			{
				ID:          "cell_cluster",
				Title:       "The Cluster",
				Description: "A mat of cells moves as one, slower than you but never alone.",
				Choices: []Choice{
					{
						Text:     "Move with them for a while",
						Outcome:  "Together the current is easier. You remember this.",
						Category: CategoryCooperation,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "cooperation", Amount: 0.3},
						},
					},
					{
						Text:     "Push through the mat",
						Outcome:  "They part around you and close behind you, indifferent.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 5},
						},
					},
				},
			},
		},
		model.StagePrehistoric: {
			{
				ID:          "wounded_packmate",
				Title:       "The Wounded One",
				Description: "One of the pack limps behind, leaving a dark trail in the mud.",
				Choices: []Choice{
					{
						Text:     "Slow down and shield it",
						Outcome:  "The pack waits. The rain keeps falling. It survives the night.",
						Category: CategoryCompassion,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "compassion", Amount: 0.4},
							{Kind: EffectAddTime, Seconds: -10},
						},
					},
					{
						Text:     "Leave it and keep the pace",
						Outcome:  "The trail ends somewhere behind you. The pack does not look back.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddTime, Seconds: 10},
						},
					},
				},
			},
			{
				ID:          "fire_ridge",
				Title:       "Fire on the Ridge",
				Description: "Lightning split a dead tree. The flames have not yet died.",
				Choices: []Choice{
					{
						Text:     "Carry a burning branch back",
						Outcome:  "Heat without sun. The others gather close and watch the dark differently.",
						Category: CategoryCuriosity,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "curiosity", Amount: 0.4},
							{Kind: EffectAddResources, Resources: 12},
						},
					},
					{
						Text:     "Keep the pack clear of it",
						Outcome:  "The fire burns itself out alone. Safe, and nothing learned.",
						Category: CategoryCooperation,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "cooperation", Amount: 0.2},
						},
					},
				},
			},
			{
				ID:          "rival_herd",
				Title:       "The Rival Herd",
				Description: "Another herd grazes the same slope, watching you watch them.",
				Choices: []Choice{
					{
						Text:     "Graze alongside them",
						Outcome:  "Two herds, one slope, no blood. The grass is enough tonight.",
						Category: CategoryCooperation,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "cooperation", Amount: 0.4},
							{Kind: EffectAddResources, Resources: 6},
						},
					},
					{
						Text:     "Drive them off the slope",
						Outcome:  "The slope is yours, and emptier for it.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 15},
							{Kind: EffectModifyTrait, Trait: "cooperation", Amount: -0.2},
						},
					},
				},
			},
		},
		model.StageOrdered: {
			{
				ID:          "stranger_gate",
				Title:       "The Stranger at the Gate",
				Description: "A traveler collapses at the village boundary, asking for nothing.",
				Choices: []Choice{
					{
						Text:     "Take them in and share the stores",
						Outcome:  "They recover slowly. They know songs no one here has heard.",
						Category: CategoryCompassion,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "compassion", Amount: 0.4},
							{Kind: EffectAddResources, Resources: -10},
						},
					},
					{
						Text:     "Give water and send them on",
						Outcome:  "They walk until the road takes them. The stores stay full.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 2},
						},
					},
				},
			},
			{
				ID:          "night_sky",
				Title:       "The Turning Sky",
				Description: "An elder charts the stars in ash on a flat stone, night after night.",
				Choices: []Choice{
					{
						Text:     "Sit and learn the chart",
						Outcome:  "The sky repeats. Whatever is coming, it has come before.",
						Category: CategoryCuriosity,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "curiosity", Amount: 0.4},
							{Kind: EffectModifyTrait, Trait: "consciousness", Amount: 0.2},
						},
					},
					{
						Text:     "Work the fields instead",
						Outcome:  "The harvest comes in early. The stone chart fills without you.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 14},
						},
					},
				},
			},
			{
				ID:          "flood_stories",
				Title:       "The Old Stories",
				Description: "The village argues: build higher, or trust that the water never reached this far.",
				Choices: []Choice{
					{
						Text:     "Organize the builders",
						Outcome:  "Walls rise together, stone by stone. The arguing stops.",
						Category: CategoryCooperation,
						Effects: []Effect{
							{Kind: EffectModifyTrait, Trait: "cooperation", Amount: 0.4},
							{Kind: EffectAddTime, Seconds: 15},
						},
					},
					{
						Text:     "Stockpile for yourself",
						Outcome:  "Your own store grows. The village builds slower without you.",
						Category: CategoryEfficiency,
						Effects: []Effect{
							{Kind: EffectAddResources, Resources: 18},
							{Kind: EffectModifyTrait, Trait: "cooperation", Amount: -0.2},
						},
					},
				},
			},
		},
	}}
}
