package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

const (
	MessageMinLength = 5
	MessageMaxLength = 60000
)

var quoteClass = regexp.MustCompile(`^quote$`)

// Parser turns user posted markdown into sanitized HTML.
type Parser struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Parser {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewThematicBreakParser(), 200),
			util.Prioritized(parser.NewListParser(), 300),
			util.Prioritized(parser.NewListItemParser(), 400),
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewBlockquoteParser(), 800),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewLinkParser(), 200),
			util.Prioritized(parser.NewAutoLinkParser(), 300),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
		parser.WithParagraphTransformers(
			util.Prioritized(parser.LinkReferenceParagraphTransformer, 100),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(quoteClass).OnElements("blockquote")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Parser{md: md, policy: policy}
}

// Validate checks the raw message length the way posting does.
func (p *Parser) Validate(text string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(text))
	if length == 0 {
		return internal_errors.BadRequest("You have to enter a message.")
	}
	if length < MessageMinLength {
		return internal_errors.BadRequest(fmt.Sprintf("Posted message should be at least %d characters long (it has %d).", MessageMinLength, length))
	}
	if length > MessageMaxLength {
		return internal_errors.BadRequest(fmt.Sprintf("Posted message cannot be longer than %d characters (it has %d).", MessageMaxLength, length))
	}
	return nil
}

// Parse validates text and renders it. Raw HTML in the input is never trusted.
func (p *Parser) Parse(text string) (string, error) {
	if err := p.Validate(text); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(strings.TrimSpace(text)), &buf); err != nil {
		return "", fmt.Errorf("failed to render markup: %w", err)
	}
	rendered := strings.ReplaceAll(buf.String(), "<blockquote>", `<blockquote class="quote">`)
	return strings.TrimSpace(p.policy.Sanitize(rendered)), nil
}
