package model

import "strings"

// Emotion is a final emotion label. Every modality result is translated into
// one of these before fusion.
type Emotion string

const (
	Happy    Emotion = "happy"
	Sad      Emotion = "sad"
	Angry    Emotion = "angry"
	Stressed Emotion = "stressed"
	Neutral  Emotion = "neutral"
)

// Emotions lists the final labels in taxonomy order.
var Emotions = []Emotion{Happy, Sad, Angry, Stressed, Neutral}

// Valid reports whether e is one of the five final labels.
func (e Emotion) Valid() bool {
	switch e {
	case Happy, Sad, Angry, Stressed, Neutral:
		return true
	}
	return false
}

func (e Emotion) String() string { return string(e) }

// ParseEmotion normalizes s and returns the matching label.
// Anything outside the taxonomy becomes Neutral.
func ParseEmotion(s string) Emotion {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if e.Valid() {
		return e
	}
	return Neutral
}

// Level is the recommendation tier returned to callers.
type Level string

const (
	LevelSoft     Level = "soft"
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Tier selects a column of the task catalog.
type Tier string

const (
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)
