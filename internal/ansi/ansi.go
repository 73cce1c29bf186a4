// Package ansi renders highlighted spans as 24-bit ANSI escape sequences
// for terminal output, decoupled from any specific front-end.
package ansi

import (
	"fmt"
	"strings"

	"github.com/xonecas/multilight"
	"github.com/xonecas/multilight/theme"
)

// Render writes a highlighted block as ANSI text. Every \x1b[0m reset
// clears the background, so the block background is re-applied after each
// reset; otherwise terminals fall back to their own background mid-line.
func Render(h *multilight.Highlighted, src string) string {
	blockBg := bgSeq(h.Background.Background)

	var b strings.Builder
	for _, line := range h.Lines {
		bg := blockBg
		if line.Override != nil && line.Override.Background != nil {
			bg = bgSeq(line.Override.Background)
		}
		b.WriteString(bg)
		for _, span := range line.Spans {
			text := src[span.Start : span.Start+span.Length]
			nl := strings.HasSuffix(text, "\n")
			if nl {
				text = text[:len(text)-1]
			}
			if text != "" {
				b.WriteString(styleSeq(span.Style, h.Background))
				b.WriteString(text)
				b.WriteString("\x1b[0m")
				b.WriteString(bg)
			}
			if nl {
				b.WriteString("\x1b[0m\n")
			}
		}
	}
	return b.String()
}

// RenderNumbered renders the block with a line-number gutter. The block is
// split with SGR state propagated per line, so the gutter can reset styling
// without corrupting a span that continues from the previous line. Gutter
// text is the default foreground faded toward the background.
func RenderNumbered(h *multilight.Highlighted, src string) string {
	lines := SplitLines(Render(h, src))
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	gutter := ""
	if fg, bg := h.Background.Foreground, h.Background.Background; fg != nil && bg != nil {
		dim := fg.Blend(*bg, 0.5)
		gutter = fmt.Sprintf("\x1b[38;2;%d;%d;%dm", dim.R, dim.G, dim.B)
	}

	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%s%4d\x1b[0m  %s\n", gutter, i+1, line)
	}
	return b.String()
}

// styleSeq builds the SGR sequence for one span, falling back to the
// block default for unset fields.
func styleSeq(s theme.Style, def theme.Style) string {
	var b strings.Builder
	fg := s.Foreground
	if fg == nil {
		fg = def.Foreground
	}
	if fg != nil {
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", fg.R, fg.G, fg.B)
	}
	if s.Background != nil {
		fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm", s.Background.R, s.Background.G, s.Background.B)
	}
	if s.Bold.Bool() {
		b.WriteString("\x1b[1m")
	}
	if s.Italic.Bool() {
		b.WriteString("\x1b[3m")
	}
	if s.Underline.Bool() {
		b.WriteString("\x1b[4m")
	}
	if s.Strikethrough.Bool() {
		b.WriteString("\x1b[9m")
	}
	return b.String()
}

// bgSeq converts a color to an ANSI 24-bit background sequence, empty
// when unset.
func bgSeq(c *theme.Color) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B)
}

// SplitLines splits a rendered block into per-line strings, propagating
// open SGR state so each line is independently renderable.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	if len(lines) <= 1 {
		return lines
	}
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = scanSGR(line, active)
	}
	return lines
}

// scanSGR scans a line for SGR escape sequences and updates the active
// sequence list. Resets clear the list; other SGRs are appended.
func scanSGR(line string, active []string) []string {
	for j := 0; j < len(line); j++ {
		if line[j] != '\x1b' || j+1 >= len(line) || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		seq := line[j : k+1]
		if seq == "\x1b[0m" || seq == "\x1b[m" {
			active = active[:0]
		} else {
			active = append(active, seq)
		}
		j = k
	}
	return active
}
