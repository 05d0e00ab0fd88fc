// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/mangoh/sx1509"
	"github.com/maruel/ansi256"
)

// Block colours, by direction and level.
var (
	inputActive    = color.NRGBA{0x00, 0xD0, 0x00, 0xFF}
	inputInactive  = color.NRGBA{0x00, 0x30, 0x00, 0xFF}
	outputActive   = color.NRGBA{0xFF, 0x40, 0x00, 0xFF}
	outputInactive = color.NRGBA{0x40, 0x10, 0x00, 0xFF}
)

// pinStrip prints the pins of one expander as a row of blocks, pin 0 first.
type pinStrip struct {
	w       io.Writer
	palette *ansi256.Palette // nil prints letters
	buf     bytes.Buffer
}

func (s *pinStrip) Write(name string, pins []sx1509.PinConfiguration) error {
	s.buf.Reset()
	fmt.Fprintf(&s.buf, "%-10s ", name)
	for _, p := range pins {
		if s.palette == nil {
			s.buf.WriteByte(pinLetter(p))
			continue
		}
		_, _ = io.WriteString(&s.buf, s.palette.Block(pinColor(p)))
	}
	if s.palette != nil {
		_, _ = s.buf.WriteString("\033[0m")
	}
	_ = s.buf.WriteByte('\n')
	_, err := s.buf.WriteTo(s.w)
	return err
}

func pinColor(p sx1509.PinConfiguration) color.NRGBA {
	switch {
	case p.Direction == sx1509.Output && p.Active:
		return outputActive
	case p.Direction == sx1509.Output:
		return outputInactive
	case p.Active:
		return inputActive
	}
	return inputInactive
}

// pinLetter is H/L for outputs and 1/0 for inputs.
func pinLetter(p sx1509.PinConfiguration) byte {
	switch {
	case p.Direction == sx1509.Output && p.Active:
		return 'H'
	case p.Direction == sx1509.Output:
		return 'L'
	case p.Active:
		return '1'
	}
	return '0'
}

func describePin(n, pin int, c sx1509.PinConfiguration) string {
	s := fmt.Sprintf("%d.%-2d %-6s %-10s %-8s", n, pin, c.Direction, c.Polarity, c.Pull)
	if c.Direction == sx1509.Output {
		s += fmt.Sprintf(" %-9s", c.OutputType)
	} else {
		s += fmt.Sprintf(" %-9s", c.Edge)
	}
	irq := "-"
	if c.InterruptEnabled {
		irq = "irq"
	}
	return s + fmt.Sprintf(" %-3s active=%t", irq, c.Active)
}
