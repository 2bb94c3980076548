package cirru

import (
	"fmt"
	"strings"
)

// Position locates a syntax error in the source text, 1-indexed.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// SyntaxError is a tokenizer-level failure with its location.
type SyntaxError struct {
	Message string
	Pos     Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

func syntaxErr(line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Pos:     Position{Line: line, Column: col},
	}
}

// Parse reads Cirru source text into a sequence of top-level expressions.
//
// Layout rules: indentation is two spaces per level; a deeper-indented line
// nests into the most recent expression one level up. Within a line, parens
// group children, a bare `$` wraps the rest of the current group into one
// nested child, and double quotes delimit tokens containing spaces or other
// specials (escapes: \n \t \r \" \\).
func Parse(text string) ([]*Node, error) {
	roots := []*Node{}
	// open[d] is the expression currently accepting children at depth d+1
	var open []*Node

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth, body, err := splitIndent(line, lineNo)
		if err != nil {
			return nil, err
		}
		expr, err := parseLine(body, lineNo, len(line)-len(body))
		if err != nil {
			return nil, err
		}
		if depth == 0 {
			roots = append(roots, expr)
			open = open[:0]
			open = append(open, expr)
			continue
		}
		if depth > len(open) {
			return nil, syntaxErr(lineNo, 1, "unexpected indentation of %d levels", depth)
		}
		parent := open[depth-1]
		parent.Children = append(parent.Children, expr)
		open = append(open[:depth], expr)
	}
	return roots, nil
}

func splitIndent(line string, lineNo int) (int, string, error) {
	spaces := 0
	for spaces < len(line) && line[spaces] == ' ' {
		spaces++
	}
	if spaces < len(line) && line[spaces] == '\t' {
		return 0, "", syntaxErr(lineNo, spaces+1, "tab is not allowed in indentation")
	}
	if spaces%2 != 0 {
		return 0, "", syntaxErr(lineNo, spaces+1, "odd indentation of %d spaces", spaces)
	}
	return spaces / 2, line[spaces:], nil
}

// lineParser walks the tokens of a single line.
type lineParser struct {
	src    []rune
	pos    int
	lineNo int
	colOff int
}

func parseLine(body string, lineNo, colOff int) (*Node, error) {
	p := &lineParser{src: []rune(body), lineNo: lineNo, colOff: colOff}
	children, err := p.parseGroup(false)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, p.errHere("unexpected \")\"")
	}
	return NewList(children...), nil
}

// parseGroup consumes tokens until the line ends or, when inParens is set,
// until the matching close paren.
func (p *lineParser) parseGroup(inParens bool) ([]*Node, error) {
	items := []*Node{}
	for {
		p.skipSpaces()
		if p.pos >= len(p.src) {
			if inParens {
				return nil, p.errHere("missing \")\" before end of line")
			}
			return items, nil
		}
		switch p.src[p.pos] {
		case ')':
			if !inParens {
				// leave it for the caller to report
				return items, nil
			}
			p.pos++
			return items, nil
		case '(':
			p.pos++
			sub, err := p.parseGroup(true)
			if err != nil {
				return nil, err
			}
			items = append(items, NewList(sub...))
		case '"':
			tok, err := p.readString()
			if err != nil {
				return nil, err
			}
			items = append(items, NewLeaf(tok))
		default:
			word := p.readWord()
			if word == "$" {
				rest, err := p.parseGroup(inParens)
				if err != nil {
					return nil, err
				}
				items = append(items, NewList(rest...))
				return items, nil
			}
			items = append(items, NewLeaf(word))
		}
	}
}

func (p *lineParser) skipSpaces() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *lineParser) readWord() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '(' || c == ')' {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *lineParser) readString() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errHere("incomplete escape at end of line")
			}
			switch p.src[p.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				return "", p.errHere("unknown escape \\%c", p.src[p.pos])
			}
			p.pos++
		default:
			sb.WriteRune(c)
			p.pos++
		}
	}
	return "", p.errHere("unterminated string")
}

func (p *lineParser) errHere(format string, args ...any) *SyntaxError {
	return syntaxErr(p.lineNo, p.colOff+p.pos+1, format, args...)
}
