// Package naming compiles output filename patterns like
// "{project_id}_{project_name}" into reusable templates and sanitizes the
// rendered result into a safe cross-platform filename.
package naming

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	patternLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Placeholder", Pattern: `\{[A-Za-z_][A-Za-z0-9_]*\}`},
		{Name: "Literal", Pattern: `[^{}]+`},
	})

	patternParser = participle.MustBuild[patternAST](
		participle.Lexer(patternLexer),
	)
)

// patternAST is the parsed pattern: an ordered mix of literals and placeholders.
type patternAST struct {
	Parts []*patternPart `parser:"@@*"`
}

type patternPart struct {
	Placeholder string `parser:"  @Placeholder"`
	Literal     string `parser:"| @Literal"`
}

// Fields available to patterns, filled per project.
type Fields struct {
	ProjectID   string
	ProjectName string
}

// Template is a compiled naming pattern. Compile once, render per project.
type Template struct {
	parts []*patternPart
}

// Compile parses and validates a naming pattern. Unknown placeholders are
// rejected here rather than at render time so a configuration typo stops the
// batch before any poster is produced.
func Compile(pattern string) (*Template, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("naming: empty pattern")
	}
	ast, err := patternParser.ParseString("", pattern)
	if err != nil {
		return nil, fmt.Errorf("naming: parse pattern %q: %w", pattern, err)
	}
	for _, part := range ast.Parts {
		if part.Placeholder == "" {
			continue
		}
		switch part.Placeholder {
		case "{project_id}", "{project_name}":
		default:
			return nil, fmt.Errorf("naming: unknown placeholder %s in %q", part.Placeholder, pattern)
		}
	}
	return &Template{parts: ast.Parts}, nil
}

// Render substitutes fields into the pattern and sanitizes the result.
// The returned name carries no extension.
func (t *Template) Render(f Fields) string {
	var b strings.Builder
	for _, part := range t.parts {
		switch part.Placeholder {
		case "{project_id}":
			b.WriteString(f.ProjectID)
		case "{project_name}":
			b.WriteString(f.ProjectName)
		default:
			b.WriteString(part.Literal)
		}
	}
	return Sanitize(b.String())
}

const maxFilenameLength = 200

// Sanitize turns an arbitrary string into a filename that is safe on
// Windows and Unix: unsafe characters replaced, runs of spaces/underscores
// collapsed, leading/trailing dots and spaces stripped, length capped.
func Sanitize(name string) string {
	const unsafe = `<>:"/\|?*` + "\x00"
	result := name
	for _, ch := range unsafe {
		result = strings.ReplaceAll(result, string(ch), "_")
	}
	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.Trim(result, " .")
	if runes := []rune(result); len(runes) > maxFilenameLength {
		result = string(runes[:maxFilenameLength])
	}
	return result
}
