package models

// OutcomeKind tags how a pipeline run finished.
type OutcomeKind int

const (
	// OutcomeOK is a grounded, synthesized answer.
	OutcomeOK OutcomeKind = iota
	// OutcomeDegraded is a canned answer (empty input, unreachable or insufficient source).
	OutcomeDegraded
	// OutcomeFatal is an apology returned after the generative-text service failed.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reason explains a degraded or fatal outcome.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonInputEmpty        Reason = "input_empty"
	ReasonUnreachable       Reason = "source_unreachable"
	ReasonInsufficient      Reason = "content_insufficient"
	ReasonSynthesisFailed   Reason = "synthesis_failed"
	ReasonTranslationFailed Reason = "translation_failed"
)

// Outcome is the tagged result of one pipeline run. Answer is always non-empty.
// Err and LogErr are for operators and must never be shown to end users.
type Outcome struct {
	Kind     OutcomeKind `json:"kind" yaml:"kind"`
	Reason   Reason      `json:"reason,omitempty" yaml:"reason,omitempty"`
	Answer   string      `json:"text" yaml:"text"`
	Language Language    `json:"lang" yaml:"lang"`
	Source   string      `json:"source,omitempty" yaml:"source,omitempty"`
	Logged   bool        `json:"logged" yaml:"logged"`

	Err    error `json:"-" yaml:"-"`
	LogErr error `json:"-" yaml:"-"`
}

// Fatal reports whether the outcome should be surfaced as a server error.
func (o Outcome) Fatal() bool {
	return o.Kind == OutcomeFatal
}
