// Package markup pretty-prints flat markup fragments, such as synthesized
// completion snippets, into indented multi-line form.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Config represents formatting configuration options
type Config struct {
	IndentSize int
}

// DefaultConfig returns the default formatting configuration
func DefaultConfig() *Config {
	return &Config{
		IndentSize: 2,
	}
}

// Formatter formats markup fragments
type Formatter struct {
	config *Config
	buf    *bytes.Buffer
	indent int
}

// New creates a new Formatter with the given configuration
func New(config *Config) *Formatter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Formatter{
		config: config,
		buf:    new(bytes.Buffer),
		indent: 0,
	}
}

// Format formats with the given indent size. It has the shape completion
// expects of its formatting collaborator.
func Format(source string, indentSize int) (string, error) {
	return New(&Config{IndentSize: indentSize}).Format(source)
}

type token struct {
	typ  html.TokenType
	name string
	raw  string
}

// Format puts every element on its own line, indenting children one level
// deeper than their parent. An element with no content keeps its closing tag
// on the same line. Attribute text is copied verbatim.
func (f *Formatter) Format(source string) (string, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return "", err
	}

	f.buf.Reset()
	f.indent = 0

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok.typ {
		case html.StartTagToken:
			if i+1 < len(tokens) && tokens[i+1].typ == html.EndTagToken && tokens[i+1].name == tok.name {
				f.writeLine(tok.raw + tokens[i+1].raw)
				i++
				continue
			}
			f.writeLine(tok.raw)
			if !isVoid(tok.name) {
				f.indent++
			}

		case html.EndTagToken:
			if f.indent > 0 {
				f.indent--
			}
			f.writeLine(tok.raw)

		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			f.writeLine(tok.raw)

		case html.TextToken:
			if text := strings.TrimSpace(tok.raw); text != "" {
				f.writeLine(text)
			}
		}
	}

	return strings.TrimSuffix(f.buf.String(), "\n"), nil
}

func tokenize(source string) ([]token, error) {
	z := html.NewTokenizer(strings.NewReader(source))

	var tokens []token
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return tokens, nil
			}
			return nil, fmt.Errorf("failed to tokenize markup: %w", z.Err())
		}

		// Raw is only valid until the next call to Next
		tok := token{typ: tt, raw: string(z.Raw())}
		if tt == html.StartTagToken || tt == html.EndTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			tok.name = string(name)
		}
		tokens = append(tokens, tok)
	}
}

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

func isVoid(name string) bool {
	return voidElements[atom.Lookup([]byte(name))]
}

func (f *Formatter) writeLine(s string) {
	f.writeIndent()
	f.buf.WriteString(s)
	f.buf.WriteString("\n")
}

func (f *Formatter) writeIndent() {
	if f.config.IndentSize <= 0 {
		return
	}
	f.buf.WriteString(strings.Repeat(" ", f.indent*f.config.IndentSize))
}
