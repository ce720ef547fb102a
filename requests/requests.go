package requests

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/foomo/promptserver/content"
)

// SelectPrompt - fetch the text of one prompt of the editable app
type SelectPrompt struct {
	// zero based position in the prompt list
	Index int `json:"index"`
}

// EditPrompt - replace the text of one prompt and get a candidate back
type EditPrompt struct {
	Index int `json:"index"`
	// full replacement text, split on line breaks when applied
	Text string `json:"text"`
}

// ReplaceRaw - replace the whole document with user supplied JSON
type ReplaceRaw struct {
	// the raw document text, parsed but not diffed
	JSON jsoniter.RawMessage `json:"json"`
}

// PreviewVersion - load one specific snapshot for display
type PreviewVersion struct {
	Key string `json:"key"`
}

// Publish - commit a candidate document as a new snapshot
type Publish struct {
	Candidate *content.Document `json:"candidate"`
}
