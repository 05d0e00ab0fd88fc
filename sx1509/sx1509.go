// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
)

// NumPins is the number of GPIOs on one chip.
const NumPins = 16

// Identifier names one physical chip by the I²C bus number it sits on and
// its 7 bit address.
type Identifier struct {
	Bus  int
	Addr uint16
}

func (id Identifier) String() string {
	return fmt.Sprintf("SX1509_%d_%x", id.Bus, id.Addr)
}

// Dev is one SX1509 expander.
//
// All methods are safe for concurrent use. Register accesses of one
// operation are never interleaved with another operation on the same Dev.
type Dev struct {
	// Pins are the 16 GPIOs of the chip, indexed by pin number.
	Pins []Pin

	id         Identifier
	d          *i2c.Dev
	registered []string

	mu       sync.Mutex
	handlers [NumPins]*handlerRecord
}

// New returns a device object that communicates over I²C to the SX1509 at
// id.Addr. id.Bus is only used for naming; bus must already be the bus it
// refers to.
//
// The chip is not reset; call Reset to start from the power-on state.
func New(bus i2c.Bus, id Identifier) (*Dev, error) {
	if id.Addr > 0x7f {
		return nil, fmt.Errorf("sx1509: address 0x%x is not a 7 bit I²C address", id.Addr)
	}
	d := &Dev{
		id: id,
		d:  &i2c.Dev{Bus: bus, Addr: id.Addr},
	}
	d.Pins = make([]Pin, NumPins)
	for i := range NumPins {
		p := &portpin{
			dev:    d,
			number: i,
			name:   fmt.Sprintf("%s_IO%d", id, i),
		}
		d.Pins[i] = p
		// Ignore registration failure.
		if err := gpioreg.Register(p); err == nil {
			d.registered = append(d.registered, p.name)
		}
	}
	return d, nil
}

// Identifier returns the bus and address the device was created with.
func (d *Dev) Identifier() Identifier {
	return d.id
}

func (d *Dev) String() string {
	return d.id.String()
}

// Reset performs a software reset, returning every register to its power-on
// value.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range resetSequence {
		if err := d.writeRegister(regReset, v); err != nil {
			return err
		}
	}
	return nil
}

// Close removes the pins from gpioreg and releases any WaitForEdge caller.
func (d *Dev) Close() error {
	var errs []error
	for _, p := range d.Pins {
		if pp, ok := p.(*portpin); ok {
			pp.closeEdges()
		}
	}
	for _, name := range d.registered {
		if err := gpioreg.Unregister(name); err != nil {
			errs = append(errs, err)
		}
	}
	d.registered = nil
	return errors.Join(errs...)
}

// checkPin panics when pin is not a GPIO of the chip. Addressing a pin that
// doesn't exist is a programming error in the caller.
func (d *Dev) checkPin(pin int) {
	if pin < 0 || pin >= NumPins {
		panic(fmt.Sprintf("sx1509: %s: pin %d out of range [0, %d]", d.id, pin, NumPins-1))
	}
}
