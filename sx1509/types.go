// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import (
	"errors"
	"strconv"
)

var (
	// ErrNotImplemented is returned for output modes the driver doesn't
	// support yet.
	ErrNotImplemented = errors.New("sx1509: not implemented")
)

// Polarity selects whether a pin is active when high or when low.
type Polarity uint8

const (
	ActiveHigh Polarity = 0
	ActiveLow  Polarity = 1
)

func (p Polarity) String() string {
	switch p {
	case ActiveHigh:
		return "ActiveHigh"
	case ActiveLow:
		return "ActiveLow"
	}
	return "Polarity(" + strconv.Itoa(int(p)) + ")"
}

// Pull is the resistor configuration of a pin.
type Pull uint8

const (
	PullOff  Pull = 0
	PullDown Pull = 1
	PullUp   Pull = 2
)

func (p Pull) String() string {
	switch p {
	case PullOff:
		return "PullOff"
	case PullDown:
		return "PullDown"
	case PullUp:
		return "PullUp"
	}
	return "Pull(" + strconv.Itoa(int(p)) + ")"
}

// Edge is the transition that latches an event for a pin. The values match
// the chip's 2 bit sense encoding.
type Edge uint8

const (
	EdgeNone    Edge = 0
	EdgeRising  Edge = 1
	EdgeFalling Edge = 2
	EdgeBoth    Edge = 3
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "EdgeNone"
	case EdgeRising:
		return "EdgeRising"
	case EdgeFalling:
		return "EdgeFalling"
	case EdgeBoth:
		return "EdgeBoth"
	}
	return "Edge(" + strconv.Itoa(int(e)) + ")"
}

// Direction is the value of a pin's direction bit.
type Direction uint8

const (
	Output Direction = 0
	Input  Direction = 1
)

func (d Direction) String() string {
	if d == Output {
		return "Output"
	}
	return "Input"
}

// OutputType is the driver stage used when a pin is an output.
type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain
	TriState
)

func (o OutputType) String() string {
	switch o {
	case PushPull:
		return "PushPull"
	case OpenDrain:
		return "OpenDrain"
	case TriState:
		return "TriState"
	}
	return "OutputType(" + strconv.Itoa(int(o)) + ")"
}

// PinConfiguration is a snapshot of everything the chip stores about a pin.
type PinConfiguration struct {
	Direction        Direction
	Polarity         Polarity
	Pull             Pull
	OutputType       OutputType
	Edge             Edge
	InterruptEnabled bool
	Active           bool
}
