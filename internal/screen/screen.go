package screen

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"punk_dash/internal/gfx"
)

// Screen handles rendering frames to the terminal.
type Screen struct {
	out           *termenv.Output
	previousFrame *Frame
	sequences     map[gfx.Color]string // Cached color sequences for the output's profile
}

// NewScreen creates a new Screen writing to out. Colors are downsampled to
// out's color profile.
func NewScreen(out *termenv.Output) *Screen {
	return &Screen{out: out, sequences: make(map[gfx.Color]string)}
}

// Draw renders a frame to the terminal, using delta rendering when possible.
func (s *Screen) Draw(frame *Frame) {
	if s.previousFrame == nil || s.previousFrame.height != frame.height || s.previousFrame.width != frame.width {
		s.fullRender(frame)
		s.previousFrame = NewFrame(frame.height, frame.width)
	} else {
		s.deltaRender(frame)
	}
	s.previousFrame.CopyFrom(frame)
}

// Invalidate forces the next Draw to repaint everything.
func (s *Screen) Invalidate() {
	s.previousFrame = nil
}

// colorSequence returns the SGR parameters for c, or "" when the profile has no color.
func (s *Screen) colorSequence(c gfx.Color) string {
	seq, ok := s.sequences[c]
	if !ok {
		seq = s.out.Profile.Color(c.Hex()).Sequence(false)
		s.sequences[c] = seq
	}
	return seq
}

// writeColor writes ANSI color codes to the builder if needed.
func (s *Screen) writeColor(b *strings.Builder, c gfx.Color, isColorSet *bool, currentColor *gfx.Color) {
	if *isColorSet && c == *currentColor {
		return
	}
	seq := s.colorSequence(c)
	if seq == "" {
		return
	}
	b.WriteString(termenv.CSI + seq + "m")
	*currentColor = c
	*isColorSet = true
}

func resetColor(b *strings.Builder, isColorSet *bool) {
	if *isColorSet {
		b.WriteString(termenv.CSI + termenv.ResetSeq + "m")
		*isColorSet = false
	}
}

func moveTo(b *strings.Builder, row, col int) {
	fmt.Fprintf(b, termenv.CSI+termenv.CursorPositionSeq, row+1, col+1)
}

// fullRender draws the entire frame to the terminal.
func (s *Screen) fullRender(frame *Frame) {
	var b strings.Builder
	// Estimate: 1 glyph + up to 20 bytes for color codes per cell, plus newlines
	b.Grow(frame.height * (frame.width*21 + 2))
	moveTo(&b, 0, 0)
	var currentColor gfx.Color
	isColorSet := false

	for row := 0; row < frame.height; row++ {
		for col := 0; col < frame.width; col++ {
			if frame.continuation(row, col) {
				continue
			}
			if frame.isBackground[row][col] {
				resetColor(&b, &isColorSet)
			} else {
				s.writeColor(&b, frame.colors[row][col], &isColorSet, &currentColor)
			}
			b.WriteString(frame.glyphs[row][col])
		}
		if row < frame.height-1 {
			b.WriteString("\r\n")
		}
	}
	resetColor(&b, &isColorSet)
	s.out.WriteString(b.String())
}

// deltaRender draws only changed parts of the frame.
func (s *Screen) deltaRender(frame *Frame) {
	var b strings.Builder
	// Estimate: fewer cells change, so use a smaller initial size
	b.Grow(frame.height * frame.width * 10)
	var currentColor gfx.Color
	isColorSet := false
	hasChanges := false
	prev := s.previousFrame

	for row := 0; row < frame.height; row++ {
		for col := 0; col < frame.width; col++ {
			if frame.glyphs[row][col] == prev.glyphs[row][col] &&
				frame.colors[row][col] == prev.colors[row][col] &&
				frame.isBackground[row][col] == prev.isBackground[row][col] {
				continue
			}
			if frame.continuation(row, col) {
				continue
			}
			hasChanges = true
			moveTo(&b, row, col)
			if frame.isBackground[row][col] {
				resetColor(&b, &isColorSet)
			} else {
				s.writeColor(&b, frame.colors[row][col], &isColorSet, &currentColor)
			}
			b.WriteString(frame.glyphs[row][col])
		}
	}
	if hasChanges {
		resetColor(&b, &isColorSet)
		s.out.WriteString(b.String())
	}
}
