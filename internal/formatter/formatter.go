package formatter

import (
	"fmt"
	"strings"

	"github.com/mcncl/objgen/internal/config"
)

// Target names the object a block of statements builds.
type Target struct {
	TypeName string
	Root     string
}

// Formatter tidies generated statements and optionally wraps them in a
// builder method. It never reorders statements.
type Formatter struct {
	wrap       bool
	methodName string
	indent     string
	header     string
}

// NewFormatter creates a new Formatter with default options
func NewFormatter() *Formatter {
	return NewFormatterWithConfig(config.NewConfig().Output)
}

// NewFormatterWithConfig creates a Formatter from the output section of the config
func NewFormatterWithConfig(cfg config.OutputConfig) *Formatter {
	indent := cfg.Indent
	if indent == "" {
		indent = "    "
	}
	return &Formatter{
		wrap:       cfg.Wrap,
		methodName: cfg.MethodName,
		indent:     indent,
		header:     cfg.Header,
	}
}

// Format normalizes whitespace: trailing spaces are removed, runs of blank
// lines collapse to one, and leading and trailing blank lines are dropped.
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	if err := checkBalanced(code); err != nil {
		return "", fmt.Errorf("failed to parse statements: %w", err)
	}
	return f.withHeader(strings.Join(normalize(code), "\n")), nil
}

// FormatFor is Format followed by wrapping in a method that returns the
// root object, when wrapping is enabled.
func (f *Formatter) FormatFor(code string, target Target) (string, error) {
	if !f.wrap {
		return f.Format(code)
	}
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	if err := checkBalanced(code); err != nil {
		return "", fmt.Errorf("failed to parse statements: %w", err)
	}
	if target.TypeName == "" || target.Root == "" {
		return "", fmt.Errorf("wrapping needs a type name and a root identifier")
	}

	name := f.methodName
	if name == "" {
		name = "build" + target.TypeName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "public static %s %s() {\n", target.TypeName, name)
	for _, line := range normalize(code) {
		if line != "" {
			b.WriteString(f.indent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\n%sreturn %s;\n}", f.indent, target.Root)
	return f.withHeader(b.String()), nil
}

func (f *Formatter) withHeader(code string) string {
	if strings.TrimSpace(f.header) == "" {
		return code
	}
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(f.header, "\n"), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "//") {
			line = "// " + line
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.Join(lines, "\n") + "\n\n" + code
}

// normalize splits code into lines with collapsed blank runs.
func normalize(code string) []string {
	var out []string
	blank := false
	for _, line := range strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return out
}

// checkBalanced verifies that brackets pair up outside literals and comments.
func checkBalanced(code string) error {
	var stack []rune
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}

	line := 1
	runes := []rune(code)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '\n':
			line++
		case '/':
			if i+1 < len(runes) && runes[i+1] == '/' {
				for i < len(runes) && runes[i] != '\n' {
					i++
				}
				line++
			}
		case '"', '\'':
			quote := c
			for i++; i < len(runes) && runes[i] != quote; i++ {
				if runes[i] == '\\' {
					i++
				} else if runes[i] == '\n' {
					return fmt.Errorf("line %d: unterminated literal", line)
				}
			}
			if i >= len(runes) {
				return fmt.Errorf("line %d: unterminated literal", line)
			}
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return fmt.Errorf("line %d: unexpected %q", line, c)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}
	return nil
}
