package editor

import (
	"strings"

	"github.com/foomo/promptserver/content"
	"github.com/pkg/errors"
)

// editableApp is the only app a session can edit. Editing is limited to
// app index 0 on purpose, a known limitation carried over from the
// original editor, not silently generalized.
const editableApp = 0

// Session owns exactly one mutable working copy of the current document.
// The copy is deep, in progress edits never alias data held by the cache.
// Session itself never talks to a backend, it only produces candidate
// documents for the repository to publish.
type Session struct {
	doc *content.Document
}

func NewSession() *Session {
	return &Session{}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Document returns the held working copy, nil before the first SetDocument.
func (s *Session) Document() *content.Document {
	return s.doc
}

// SetDocument replaces the working copy with a deep copy of the given
// document.
func (s *Session) SetDocument(doc *content.Document) {
	s.doc = doc.Clone()
}

// SelectPrompt returns the content of the given prompt of the editable app
// joined by line breaks.
func (s *Session) SelectPrompt(index int) (string, error) {
	prompt, err := s.prompt(index)
	if err != nil {
		return "", err
	}
	return prompt.Text(), nil
}

// ApplyPromptEdit compares the new text against the current content of the
// given prompt, ignoring leading and trailing whitespace. When nothing
// changed it returns ErrNoChange. Otherwise it returns a candidate
// document with the prompt content replaced, leaving the held document
// untouched until the candidate is committed.
func (s *Session) ApplyPromptEdit(index int, text string) (*content.Document, error) {
	prompt, err := s.prompt(index)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == strings.TrimSpace(prompt.Text()) {
		return nil, ErrNoChange
	}

	candidate := s.doc.Clone()
	candidate.Apps[editableApp].Prompts[index].SetText(text)
	return candidate, nil
}

// ApplyRawReplace parses the given text as a full document and returns it
// as a candidate, replacing everything verbatim without diffing. On
// malformed JSON the held document stays untouched.
func (s *Session) ApplyRawReplace(text string) (*content.Document, error) {
	candidate, err := content.ParseDocument([]byte(text))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedInput, "%s", err.Error())
	}
	return candidate, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Session) prompt(index int) (*content.Prompt, error) {
	if !s.doc.Valid() {
		return nil, errors.New("no document loaded")
	}
	prompts := s.doc.Apps[editableApp].Prompts
	if index < 0 || index >= len(prompts) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, have %d prompts", index, len(prompts))
	}
	return prompts[index], nil
}
