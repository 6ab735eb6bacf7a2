package models

import "strings"

// Stage labels for the acquisition escalation ladder.
const (
	StageDirect     = "stage1"     // direct render, no proxy
	StageProxied    = "stage2"     // proxied render with cookies
	StageBrightData = "brightdata" // remote unlocker
)

// Stage dispositions recorded in StageOutcome.Steps.
const (
	DispositionSuccess = "success"
	DispositionFailed  = "failed"
	DispositionSkipped = "skipped"
)

// ExtractedContent is the structured result of one extraction pass.
// It is built once per render attempt and never mutated afterwards.
type ExtractedContent struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Images      []string `json:"images"`
}

// Valid reports whether the content is good enough to stop escalating:
// a non-empty title and at least one image. Description and price are
// useful but optional signals.
func (c *ExtractedContent) Valid() bool {
	if c == nil {
		return false
	}
	return strings.TrimSpace(c.Title) != "" && len(c.Images) > 0
}

// StageMeta carries per-attempt diagnostics for the winning (or last) stage.
type StageMeta struct {
	DurationSeconds     float64 `json:"duration_seconds"`
	UserAgent           string  `json:"user_agent,omitempty"`
	Proxy               string  `json:"proxy,omitempty"`
	Attempts            int     `json:"attempts,omitempty"`
	NavigationWaitUntil string  `json:"navigation_wait_until,omitempty"`
	NavigationTimedOut  bool    `json:"navigation_timed_out,omitempty"`
}

// StageOutcome is the terminal result of one orchestration run. It is owned
// exclusively by the orchestrator; an OK outcome always carries content that
// satisfies the validity predicate.
type StageOutcome struct {
	OK      bool              `json:"ok"`
	Stage   string            `json:"stage,omitempty"`
	Content *ExtractedContent `json:"content,omitempty"`
	Meta    StageMeta         `json:"meta"`
	Steps   map[string]string `json:"steps,omitempty"`
	Error   string            `json:"error,omitempty"`
}
