package template

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The directive grammar inside {{...}}:
//
//	name [":" arg ("," arg)*] [arg ...] ["|" key "=" value]* ["--" flag [value]]*
//
// Colon arguments and bare arguments are interchangeable spellings; options
// and flags always come last.
var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Flag", Pattern: `--[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `-?\d+`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Equal", Pattern: `=`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

type rawOption struct {
	Key   string `parser:"@Ident Equal"`
	Value string `parser:"@(Ident | Number)"`
}

type rawFlag struct {
	Name  string `parser:"@Flag"`
	Value string `parser:"(@(Ident | Number | Star))?"`
}

type rawDirective struct {
	Name  string       `parser:"@Ident"`
	Args  []string     `parser:"(Colon @(Ident | Number | Star) (Comma @(Ident | Number | Star))*)?"`
	Extra []string     `parser:"(@(Ident | Number | Star))*"`
	Opts  []*rawOption `parser:"(Pipe @@)*"`
	Flags []*rawFlag   `parser:"@@*"`
}

var directiveParser = participle.MustBuild[rawDirective](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)

// directive is the normalized form compile works on.
type directive struct {
	name  string
	args  []string          // colon and bare arguments, in order
	opts  map[string]string // |key=value
	flags map[string]string // --flag [value]; valueless flags map to ""
}

// parseDirective parses the text between {{ and }}. The returned offset is
// relative to that text and only meaningful when err != nil.
func parseDirective(content string) (directive, int, error) {
	raw, err := directiveParser.ParseString("", content)
	if err != nil {
		offset := 0
		var perr participle.Error
		if ok := asParticipleError(err, &perr); ok {
			offset = perr.Position().Offset
		}
		return directive{}, offset, err
	}

	d := directive{
		name: strings.ToLower(raw.Name),
		args: append(append([]string(nil), raw.Args...), raw.Extra...),
	}
	if len(raw.Opts) > 0 {
		d.opts = make(map[string]string, len(raw.Opts))
		for _, o := range raw.Opts {
			d.opts[strings.ToLower(o.Key)] = o.Value
		}
	}
	if len(raw.Flags) > 0 {
		d.flags = make(map[string]string, len(raw.Flags))
		for _, f := range raw.Flags {
			d.flags[strings.ToLower(strings.TrimPrefix(f.Name, "--"))] = f.Value
		}
	}
	return d, 0, nil
}

func asParticipleError(err error, target *participle.Error) bool {
	if perr, ok := err.(participle.Error); ok {
		*target = perr
		return true
	}
	return false
}
