package parser

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ludo-technologies/compass/domain"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// ErrInvalidEncoding is returned for source that is not valid UTF-8
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

var grammars = map[domain.Language]func() *sitter.Language{
	domain.LanguageRust:       rust.GetLanguage,
	domain.LanguageGo:         golang.GetLanguage,
	domain.LanguageJavaScript: javascript.GetLanguage,
	domain.LanguageJava:       java.GetLanguage,
	domain.LanguageCPP:        cpp.GetLanguage,
	domain.LanguageSwift:      swift.GetLanguage,
	domain.LanguageZig:        zigLanguage,
}

// zigLanguage wraps the standalone Zig grammar, which is built for ABI 14
func zigLanguage() *sitter.Language {
	return sitter.NewLanguage(zig.Language())
}

// Grammar returns the tree-sitter grammar for a language
func Grammar(lang domain.Language) (*sitter.Language, error) {
	get, ok := grammars[lang]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrCodeUnsupportedLanguage,
			fmt.Sprintf("no grammar registered for language '%s'", lang), nil)
	}
	return get(), nil
}

// Tree is a tree-sitter parse tree together with the source it was parsed from
type Tree struct {
	tree     *sitter.Tree
	language domain.Language
	source   []byte
}

// Root returns the root node of the tree
func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Language returns the language the tree was parsed as
func (t *Tree) Language() domain.Language { return t.language }

// Source returns the parsed source text
func (t *Tree) Source() []byte { return t.source }

// HasErrors reports whether the tree contains ERROR or MISSING nodes
func (t *Tree) HasErrors() bool {
	root := t.Root()
	return root != nil && root.HasError()
}

// Close releases the tree
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parser wraps a tree-sitter parser configured for one language.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser   *sitter.Parser
	language domain.Language
	grammar  *sitter.Language
}

// NewParser creates a parser for the given language
func NewParser(lang domain.Language) (*Parser, error) {
	grammar, err := Grammar(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	return &Parser{
		parser:   parser,
		language: lang,
		grammar:  grammar,
	}, nil
}

// ParseFile parses a source file. The returned tree must be closed by the caller.
func (p *Parser) ParseFile(ctx context.Context, filename string, source []byte) (*Tree, error) {
	if !utf8.Valid(source) {
		return nil, domain.NewParseError(filename, ErrInvalidEncoding)
	}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		if err == nil {
			err = errors.New("parser returned no tree")
		}
		return nil, domain.NewParseError(filename, err)
	}

	if tree.RootNode() == nil {
		tree.Close()
		return nil, domain.NewParseError(filename, errors.New("no root node in parse tree"))
	}

	return &Tree{
		tree:     tree,
		language: p.language,
		source:   source,
	}, nil
}

// Parse parses source code
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	return p.ParseFile(ctx, "<input>", source)
}

// Language returns the language this parser is configured for
func (p *Parser) Language() domain.Language {
	return p.language
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// SourceParser implements domain.SourceParser with a fresh tree-sitter parser per call
type SourceParser struct{}

// NewSourceParser creates a SourceParser
func NewSourceParser() *SourceParser {
	return &SourceParser{}
}

// Parse parses source as the given language
func (s *SourceParser) Parse(ctx context.Context, lang domain.Language, source []byte) (domain.SyntaxTree, error) {
	p, err := NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	tree, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return tree, nil
}
