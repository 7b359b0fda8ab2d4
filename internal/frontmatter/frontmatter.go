// Package frontmatter splits a resume document into its YAML metadata block
// and markdown body.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alnah/go-md2cv/internal/yamlutil"
)

// ErrFrontMatter indicates a delimited metadata block that could not be decoded.
var ErrFrontMatter = errors.New("malformed front matter")

// Field length limits, matching the CLI configuration limits.
const (
	MaxNameLength = 100
	MaxTextLength = 500
	MaxURLLength  = 2048
	MaxItems      = 50
)

// FrontMatter is the structured metadata of a resume.
type FrontMatter struct {
	Name   string       `yaml:"name,omitempty" json:"name,omitempty"`
	Header []HeaderItem `yaml:"header,omitempty" json:"header,omitempty"`
}

// HeaderItem is one contact entry shown under the name.
type HeaderItem struct {
	Text    string `yaml:"text" json:"text"`
	Link    string `yaml:"link,omitempty" json:"link,omitempty"`
	NewLine bool   `yaml:"newLine,omitempty" json:"newLine,omitempty"`
}

// IsEmpty reports whether there is nothing to show in a header.
func (fm FrontMatter) IsEmpty() bool {
	return strings.TrimSpace(fm.Name) == "" && len(fm.Header) == 0
}

func (fm FrontMatter) clone() FrontMatter {
	out := FrontMatter{Name: fm.Name}
	if fm.Header != nil {
		out.Header = append([]HeaderItem(nil), fm.Header...)
	}
	return out
}

func (fm FrontMatter) validate() error {
	if len(fm.Name) > MaxNameLength {
		return fmt.Errorf("name: %d characters (max %d)", len(fm.Name), MaxNameLength)
	}
	if len(fm.Header) > MaxItems {
		return fmt.Errorf("header: %d items (max %d)", len(fm.Header), MaxItems)
	}
	for i, item := range fm.Header {
		if len(item.Text) > MaxTextLength {
			return fmt.Errorf("header[%d].text: %d characters (max %d)", i, len(item.Text), MaxTextLength)
		}
		if len(item.Link) > MaxURLLength {
			return fmt.Errorf("header[%d].link: %d characters (max %d)", i, len(item.Link), MaxURLLength)
		}
	}
	return nil
}

// Policy selects what Parse returns when a delimited block is malformed.
type Policy int

const (
	// PolicyError fails the parse with ErrFrontMatter.
	PolicyError Policy = iota
	// PolicyLast returns the most recent successfully parsed value.
	PolicyLast
	// PolicyEmpty returns an empty FrontMatter.
	PolicyEmpty
)

// ParsePolicy maps "error", "last" or "empty" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return PolicyError, nil
	case "last":
		return PolicyLast, nil
	case "empty":
		return PolicyEmpty, nil
	}
	return PolicyError, fmt.Errorf("unknown front matter policy %q (want error, last or empty)", s)
}

func (p Policy) String() string {
	switch p {
	case PolicyLast:
		return "last"
	case PolicyEmpty:
		return "empty"
	default:
		return "error"
	}
}

// Result is the outcome of one parse.
type Result struct {
	FrontMatter FrontMatter

	// Body is the markdown after the delimited block.
	Body string

	// BodyBegin is the 1-based input line where Body starts.
	BodyBegin int

	// Raw is the undecoded metadata text, empty when there is no block.
	Raw string

	// Fallback is set when a malformed block was replaced according to the policy.
	Fallback bool
}

// Parser extracts front matter. It remembers the last good value for
// PolicyLast and is safe for concurrent use.
type Parser struct {
	policy Policy

	mu   sync.Mutex
	last FrontMatter
}

// NewParser creates a parser with the given malformed-block policy.
func NewParser(policy Policy) *Parser {
	return &Parser{policy: policy}
}

// Policy returns the parser's malformed-block policy.
func (p *Parser) Policy() Policy {
	return p.policy
}

// Parse splits raw into front matter and body. Input without a closed
// leading block is returned unchanged as the body.
func (p *Parser) Parse(raw string) (Result, error) {
	blk, ok := split(raw)
	if !ok {
		return Result{Body: raw, BodyBegin: 1}, nil
	}

	res := Result{Body: blk.body, BodyBegin: blk.bodyBegin, Raw: blk.meta}

	fm, err := decode(blk.meta)
	if err == nil {
		p.mu.Lock()
		p.last = fm.clone()
		p.mu.Unlock()
		res.FrontMatter = fm
		return res, nil
	}

	switch p.policy {
	case PolicyLast:
		p.mu.Lock()
		res.FrontMatter = p.last.clone()
		p.mu.Unlock()
		res.Fallback = true
		return res, nil
	case PolicyEmpty:
		res.Fallback = true
		return res, nil
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
}

// Parse splits raw with a one-off parser using PolicyError.
func Parse(raw string) (Result, error) {
	return NewParser(PolicyError).Parse(raw)
}

func decode(meta string) (FrontMatter, error) {
	var fm FrontMatter
	if _, err := yamlutil.DecodeMapping([]byte(meta), &fm); err != nil {
		return FrontMatter{}, err
	}
	if err := fm.validate(); err != nil {
		return FrontMatter{}, err
	}
	return fm, nil
}
