package responses

// Publish - information about a committed candidate
type Publish struct {
	// the key of the snapshot that was written
	Key string `json:"key"`
}

// Versions - all known snapshot keys, newest first
type Versions struct {
	Keys []string `json:"keys"`
}

// PromptText - the joined content of one prompt
type PromptText struct {
	Text string `json:"text"`
}
