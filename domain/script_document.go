package domain

import "fmt"

// ScriptDocument is the wire shape of a generated script. Timestamps are strings accepted by ParseTimestamp.
type ScriptDocument struct {
	Scene ScriptScene `json:"scene" jsonschema_description:"A single scene with background, characters, and dialogues"`
}

type ScriptScene struct {
	Background ScriptBackground  `json:"background" jsonschema_description:"Background description and timing for the scene"`
	Characters []ScriptCharacter `json:"characters" jsonschema_description:"Characters present in the scene with consistent appearances"`
	Dialogues  []ScriptDialogue  `json:"dialogues" jsonschema_description:"Dialogues happening during this scene, ordered by start time"`
}

type ScriptBackground struct {
	Description string `json:"description" jsonschema_description:"Description of the background, without people"`
	Start       string `json:"start" jsonschema_description:"Start timestamp of the background (HH:MM:SS)"`
	End         string `json:"end" jsonschema_description:"End timestamp of the background (HH:MM:SS)"`
}

type ScriptCharacter struct {
	Name       string `json:"name" jsonschema_description:"Character's name"`
	Appearance string `json:"appearance" jsonschema_description:"Appearance of the character (color, outfit, style)"`
	Gender     string `json:"gender" jsonschema:"enum=male,enum=female" jsonschema_description:"Character's gender"`
}

type ScriptDialogue struct {
	Character string `json:"character" jsonschema_description:"Name of the character speaking"`
	Start     string `json:"start" jsonschema_description:"Start timestamp of this dialogue (HH:MM:SS)"`
	End       string `json:"end" jsonschema_description:"End timestamp of this dialogue (HH:MM:SS)"`
	Line      string `json:"line" jsonschema_description:"Text of the dialogue"`
}

// ToScene converts timestamps and validates the result.
func (d ScriptDocument) ToScene() (*Scene, error) {
	bgRange, err := parseRange(d.Scene.Background.Start, d.Scene.Background.End)
	if err != nil {
		return nil, fmt.Errorf("%w: background: %v", ErrInvalidScene, err)
	}

	scene := &Scene{
		Background: Background{Description: d.Scene.Background.Description, Range: bgRange},
		Characters: make([]Character, 0, len(d.Scene.Characters)),
		Dialogues:  make([]Dialogue, 0, len(d.Scene.Dialogues)),
	}
	for _, c := range d.Scene.Characters {
		scene.Characters = append(scene.Characters, Character{
			Name:       c.Name,
			Appearance: c.Appearance,
			Gender:     Gender(c.Gender),
		})
	}
	for i, dl := range d.Scene.Dialogues {
		r, err := parseRange(dl.Start, dl.End)
		if err != nil {
			return nil, fmt.Errorf("%w: dialogue %d: %v", ErrInvalidScene, i, err)
		}
		scene.Dialogues = append(scene.Dialogues, Dialogue{Character: dl.Character, Line: dl.Line, Requested: r})
	}

	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

func parseRange(start string, end string) (TimeRange, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return TimeRange{}, err
	}
	r := TimeRange{Start: s, End: e}
	return r, r.Validate()
}
