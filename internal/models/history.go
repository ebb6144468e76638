package models

import "time"

// HistoryEntry is one persisted prompt/answer exchange. The answer is
// stored raw; formatting happens at render time only.
type HistoryEntry struct {
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// RenderedAnswer is the transient, display-ready form of a raw answer.
// Code answers pass through untouched; prose answers become cleaned lines.
type RenderedAnswer struct {
	IsCode bool
	Code   string
	Lines  []string
}
