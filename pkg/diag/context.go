package diag

import (
	"fmt"
	"strings"
)

// Context stores information derived from a range in some text. It is used
// for errors that point to a part of the source code, like parse errors and
// runtime exceptions.
type Context struct {
	Name   string
	Source string
	Ranging

	showInfo *rangeShowInfo
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{Name: name, Source: source, Ranging: r.Range()}
}

// Information about the source range that is needed for showing.
type rangeShowInfo struct {
	// The text before the culprit on the same line.
	Head string
	// The culprit, with any trailing newline stripped.
	Culprit string
	// The text after the culprit on the same line.
	Tail string
	// Line and column of the first character of the culprit.
	Begin Position
	// Line number of the last character of the culprit.
	EndLine int
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

func (c *Context) getShowInfo() *rangeShowInfo {
	if c.showInfo != nil {
		return c.showInfo
	}

	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	head := lastLine(before)

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(after)
	}

	begin := PositionOf(c.Source, c.From)
	endLine := begin.Line + strings.Count(culprit, "\n")

	c.showInfo = &rangeShowInfo{head, culprit, tail, begin, endLine}
	return c.showInfo
}

// Position returns the line and column of the start of the range.
func (c *Context) Position() Position {
	if c.checkPosition() != nil {
		return Position{}
	}
	return c.getShowInfo().Begin
}

// Describe returns a string describing the location of the range, in the
// form of name:line:col.
func (c *Context) describeStart() string {
	if err := c.checkPosition(); err != nil {
		return c.Name + ":?"
	}
	p := c.getShowInfo().Begin
	return fmt.Sprintf("%s:%d:%d", c.Name, p.Line, p.Column)
}

// Show shows a SourceContext.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.describeStart() + ":\n" + indent + c.relevantSource(indent)
}

// ShowCompact shows a SourceContext, with no line break between the source
// position and the relevant source excerpt.
func (c *Context) ShowCompact(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.describeStart() + ": "
	descIndent := strings.Repeat(" ", len(desc))
	return desc + c.relevantSource(indent+descIndent)
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) relevantSource(indent string) string {
	info := c.getShowInfo()

	var sb strings.Builder
	sb.WriteString(info.Head)

	culprit := info.Culprit
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart)
		sb.WriteString(line)
		sb.WriteString(culpritEnd)
	}

	sb.WriteString(info.Tail)
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
