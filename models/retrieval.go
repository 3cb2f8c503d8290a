package models

// RetrievalStatus classifies the outcome of a content fetch.
type RetrievalStatus int

const (
	// RetrievalSufficient means cleaned content is long enough to ground an answer.
	RetrievalSufficient RetrievalStatus = iota
	// RetrievalInsufficient means the page was fetched but too little text survived cleaning.
	RetrievalInsufficient
	// RetrievalUnreachable means the source could not be fetched (network, timeout, non-200).
	RetrievalUnreachable
)

func (s RetrievalStatus) String() string {
	switch s {
	case RetrievalSufficient:
		return "sufficient"
	case RetrievalInsufficient:
		return "insufficient"
	case RetrievalUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Retrieval is the result of one content retrieval. It is never an error:
// degraded outcomes are carried in Status.
type Retrieval struct {
	Status     RetrievalStatus
	Content    string // cleaned plain text, empty unless fetched
	SourceURL  string
	StatusCode int   // HTTP status when a response was received
	Err        error // cause of an unreachable result, for operators only
}
