package content

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultAppName is the name of the single app a fresh repository starts with.
const DefaultAppName = "mmx"

// Document is the full prompt repository structure as stored in a snapshot.
type Document struct {
	Apps []*App `json:"APPS"`
}

// App groups an ordered list of prompts under a name.
type App struct {
	Name    string    `json:"name"`
	Prompts []*Prompt `json:"prompts"`
}

// Prompt is a named text prompt, its content stored line by line.
type Prompt struct {
	Name    string   `json:"name"`
	Content []string `json:"content"`
}

// ------------------------------------------------------------------------------------------------
// ~ Constructors
// ------------------------------------------------------------------------------------------------

// NewDefaultDocument returns the structure a repository starts with before
// the first snapshot exists. It is never persisted automatically, only on
// an explicit publish.
func NewDefaultDocument() *Document {
	return &Document{
		Apps: []*App{
			{
				Name:    DefaultAppName,
				Prompts: []*Prompt{},
			},
		},
	}
}

// ParseDocument parses a snapshot body or user supplied JSON into a Document.
// Optional fields are filled in while parsing: missing prompt names get a
// generated label and nil slices become empty ones.
func ParseDocument(data []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, errors.Wrap(err, "failed to parse document")
	}
	d.fillDefaults()
	return d, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Bytes serializes the document as the snapshot body format: pretty printed
// JSON with four space indentation. Readers must accept any valid JSON
// whitespace, the indentation is cosmetic only.
func (d *Document) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize document")
	}
	return data, nil
}

// Valid reports whether the document contains at least one app. Anything
// else is treated as absent or corrupt.
func (d *Document) Valid() bool {
	return d != nil && len(d.Apps) > 0
}

// Validate collects all structural complaints instead of stopping at the
// first one. Called before a document is published.
func (d *Document) Validate() error {
	var err error
	if !d.Valid() {
		return errors.New("document must contain at least one app")
	}
	for i, app := range d.Apps {
		if app == nil {
			err = multierr.Append(err, errors.Errorf("app %d is nil", i))
			continue
		}
		if app.Name == "" {
			err = multierr.Append(err, errors.Errorf("app %d has no name", i))
		}
		for j, prompt := range app.Prompts {
			if prompt == nil {
				err = multierr.Append(err, errors.Errorf("prompt %d of app %d is nil", j, i))
			}
		}
	}
	return err
}

// Clone returns a deep copy. Edit sessions work on clones so that in
// progress edits never alias cached data.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{Apps: make([]*App, len(d.Apps))}
	for i, app := range d.Apps {
		if app == nil {
			continue
		}
		appClone := &App{
			Name:    app.Name,
			Prompts: make([]*Prompt, len(app.Prompts)),
		}
		for j, prompt := range app.Prompts {
			if prompt == nil {
				continue
			}
			promptClone := &Prompt{
				Name:    prompt.Name,
				Content: make([]string, len(prompt.Content)),
			}
			copy(promptClone.Content, prompt.Content)
			appClone.Prompts[j] = promptClone
		}
		clone.Apps[i] = appClone
	}
	return clone
}

// Text returns the prompt content joined by line breaks.
func (p *Prompt) Text() string {
	return strings.Join(p.Content, "\n")
}

// SetText replaces the prompt content with the given text split on line
// breaks. Empty lines are preserved, a trailing newline is not significant.
func (p *Prompt) SetText(text string) {
	p.Content = strings.Split(text, "\n")
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (d *Document) fillDefaults() {
	if d.Apps == nil {
		d.Apps = []*App{}
	}
	for _, app := range d.Apps {
		if app == nil {
			continue
		}
		if app.Prompts == nil {
			app.Prompts = []*Prompt{}
		}
		for i, prompt := range app.Prompts {
			if prompt == nil {
				continue
			}
			if prompt.Name == "" {
				prompt.Name = fmt.Sprintf("Unnamed Prompt %d", i)
			}
			if prompt.Content == nil {
				prompt.Content = []string{}
			}
		}
	}
}
