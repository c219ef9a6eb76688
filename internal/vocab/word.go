package vocab

// ProgressStatus is the backend-assigned learning stage of a word.
type ProgressStatus string

const (
	StatusNew      ProgressStatus = "NEW"
	StatusReview   ProgressStatus = "REVIEW"
	StatusMastered ProgressStatus = "MASTERED"
)

// Definition is one sense of a word.
type Definition struct {
	PartOfSpeech string `json:"partOfSpeech"`
	Meaning      string `json:"meaning"`
	Translation  string `json:"translation,omitempty"`
}

// Example is a usage sentence with an optional translation.
type Example struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation,omitempty"`
}

// Relation links a word to a related form (synonym, antonym, derivative).
type Relation struct {
	Kind string `json:"kind"`
	Word string `json:"word"`
}

// Word is a unit of vocabulary content. The client treats it as an
// immutable value once fetched; ProgressID/ProgressStatus are only
// present when the word belongs to an active session batch.
type Word struct {
	ID             int64          `json:"id"`
	Text           string         `json:"text"`
	Phonetic       string         `json:"phonetic,omitempty"`
	PhoneticUK     string         `json:"phoneticUk,omitempty"`
	Definitions    []Definition   `json:"definitions,omitempty"`
	Examples       []Example      `json:"examples,omitempty"`
	Relations      []Relation     `json:"relations,omitempty"`
	ProgressID     int64          `json:"progressId,omitempty"`
	ProgressStatus ProgressStatus `json:"progressStatus,omitempty"`
}
