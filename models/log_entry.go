package models

import "time"

// LogEntry is one stored question/answer exchange.
type LogEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"ts" yaml:"ts"`
	Question  string    `json:"question" yaml:"question"`
	Answer    string    `json:"answer" yaml:"answer"`
	Language  Language  `json:"lang" yaml:"lang"`
}
