// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin extends gpio.PinIO with the features of an SX1509 GPIO.
//
// Levels are logical: the chip applies the pin's polarity to both Read and
// Out, so with ActiveLow a High level is driven as 0V.
type Pin interface {
	gpio.PinIO
	pin.PinFunc
	// SetPolarity changes how the pin's level maps to its voltage.
	SetPolarity(p Polarity) error
	// Polarity returns the pin's polarity.
	Polarity() (Polarity, error)
	// SetOpenDrain selects the open drain driver instead of push-pull for
	// the next time the pin is an output.
	SetOpenDrain(enable bool) error
}

type portpin struct {
	dev    *Dev
	number int
	name   string

	mu    sync.Mutex
	edges chan gpio.Level
	ref   HandlerRef
}

func (p *portpin) String() string {
	return p.name
}

// Halt makes the pin a floating input without edge detection.
func (p *portpin) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *portpin) Name() string {
	return p.name
}

func (p *portpin) Number() int {
	return p.number
}

func (p *portpin) Function() string {
	return string(p.Func())
}

// In configures the pin as an input. An edge other than gpio.NoEdge claims
// the pin's change handler on the Dev, so it cannot be combined with
// AddChangeEventHandler on the same pin.
func (p *portpin) In(pull gpio.Pull, edge gpio.Edge) error {
	var sense Edge
	switch edge {
	case gpio.NoEdge:
		sense = EdgeNone
	case gpio.RisingEdge:
		sense = EdgeRising
	case gpio.FallingEdge:
		sense = EdgeFalling
	case gpio.BothEdges:
		sense = EdgeBoth
	default:
		return errors.New("sx1509: unsupported edge " + edge.String())
	}
	var err error
	switch pull {
	case gpio.PullNoChange:
	case gpio.Float:
		err = p.dev.DisableResistors(p.number)
	case gpio.PullDown:
		err = p.dev.EnablePullDown(p.number)
	case gpio.PullUp:
		err = p.dev.EnablePullUp(p.number)
	default:
		return errors.New("sx1509: unsupported pull " + pull.String())
	}
	if err != nil {
		return err
	}

	p.dev.mu.Lock()
	err = p.dev.setDirection(p.number, Input)
	p.dev.mu.Unlock()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ref.r != nil {
		ref := p.ref
		p.ref = HandlerRef{}
		if err := p.dev.RemoveChangeEventHandler(p.number, ref); err != nil {
			return err
		}
	}
	if sense == EdgeNone {
		return nil
	}
	if p.edges == nil {
		p.edges = make(chan gpio.Level, 1)
	}
	p.ref, err = p.dev.AddChangeEventHandler(p.number, sense, p.onChange, nil, 0)
	return err
}

// onChange queues the level for WaitForEdge. Events are dropped while one is
// already pending.
func (p *portpin) onChange(active bool, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edges == nil {
		return
	}
	select {
	case p.edges <- gpio.Level(active):
	default:
	}
}

// WaitForEdge waits for the next event dispatched for this pin. Events are
// only seen when something calls Dev.Dispatch.
//
// A negative timeout waits forever. It returns false on timeout, if In
// wasn't called with an edge or once the Dev is closed.
func (p *portpin) WaitForEdge(timeout time.Duration) bool {
	p.mu.Lock()
	c := p.edges
	p.mu.Unlock()
	if c == nil {
		return false
	}
	if timeout < 0 {
		_, ok := <-c
		return ok
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case _, ok := <-c:
		return ok
	case <-t.C:
		return false
	}
}

// closeEdges removes the edge handler installed by In and releases
// WaitForEdge callers.
func (p *portpin) closeEdges() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ref.r != nil {
		// The pin is going away; a failed mask update can't be acted upon.
		_ = p.dev.RemoveChangeEventHandler(p.number, p.ref)
		p.ref = HandlerRef{}
	}
	if p.edges != nil {
		close(p.edges)
		p.edges = nil
	}
}

func (p *portpin) Read() gpio.Level {
	v, _ := p.dev.Read(p.number)
	return gpio.Level(v)
}

func (p *portpin) Pull() gpio.Pull {
	v, err := p.dev.GetPullUpDown(p.number)
	if err != nil {
		return gpio.PullNoChange
	}
	switch v {
	case PullUp:
		return gpio.PullUp
	case PullDown:
		return gpio.PullDown
	}
	return gpio.Float
}

func (p *portpin) DefaultPull() gpio.Pull {
	return gpio.Float
}

// Out drives the pin. The first call on an input switches it to an output,
// keeping its polarity and driver type; later calls only update the level.
func (p *portpin) Out(l gpio.Level) error {
	c, err := p.dev.Configuration(p.number)
	if err != nil {
		return err
	}
	if c.Direction == Output {
		if l {
			return p.dev.Activate(p.number)
		}
		return p.dev.Deactivate(p.number)
	}
	return p.dev.setOutput(p.number, c.OutputType, c.Polarity, bool(l))
}

func (p *portpin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (p *portpin) Func() pin.Func {
	in, err := p.dev.IsInput(p.number)
	if err != nil {
		return pin.FuncNone
	}
	if in {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *portpin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *portpin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT:
		return p.Out(p.Read())
	}
	return errors.New("sx1509: function not supported: " + string(f))
}

func (p *portpin) SetPolarity(pol Polarity) error {
	return p.dev.SetPolarity(p.number, pol)
}

func (p *portpin) Polarity() (Polarity, error) {
	return p.dev.GetPolarity(p.number)
}

func (p *portpin) SetOpenDrain(enable bool) error {
	t := PushPull
	if enable {
		t = OpenDrain
	}
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	return p.dev.setOutputType(p.number, t)
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

var _ gpio.PinIO = &portpin{}
var _ pin.PinFunc = &portpin{}
var _ Pin = &portpin{}
