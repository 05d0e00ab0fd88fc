// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import "fmt"

// SetInput configures pin as an input with the given polarity.
//
// The polarity is written before the direction. If the direction write fails
// the pin keeps its previous direction with the new polarity.
func (d *Dev) SetInput(pin int, pol Polarity) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.setPolarity(pin, pol); err != nil {
		return err
	}
	return d.setDirection(pin, Input)
}

// SetPushPullOutput configures pin as a push-pull output driving active.
func (d *Dev) SetPushPullOutput(pin int, pol Polarity, active bool) error {
	return d.setOutput(pin, PushPull, pol, active)
}

// SetOpenDrainOutput configures pin as an open drain output driving active.
func (d *Dev) SetOpenDrainOutput(pin int, pol Polarity, active bool) error {
	return d.setOutput(pin, OpenDrain, pol, active)
}

// SetTriStateOutput always returns ErrNotImplemented.
//
// The chip has no tri-state driver. It could be emulated by switching between
// a push-pull output and an input without resistors.
func (d *Dev) SetTriStateOutput(pin int, pol Polarity) error {
	d.checkPin(pin)
	return ErrNotImplemented
}

// SetHighZ always returns ErrNotImplemented. See SetTriStateOutput.
func (d *Dev) SetHighZ(pin int) error {
	d.checkPin(pin)
	return ErrNotImplemented
}

// SetPolarity changes the polarity of pin without touching its direction.
func (d *Dev) SetPolarity(pin int, pol Polarity) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setPolarity(pin, pol)
}

// EnablePullUp enables the pull-up resistor of pin and disables its
// pull-down.
func (d *Dev) EnablePullUp(pin int) error {
	return d.setPull(pin, PullUp)
}

// EnablePullDown enables the pull-down resistor of pin and disables its
// pull-up.
func (d *Dev) EnablePullDown(pin int) error {
	return d.setPull(pin, PullDown)
}

// DisableResistors disables both resistors of pin.
func (d *Dev) DisableResistors(pin int) error {
	return d.setPull(pin, PullOff)
}

// Activate drives pin to its active level.
func (d *Dev) Activate(pin int) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeData(pin, true)
}

// Deactivate drives pin to its inactive level.
func (d *Dev) Deactivate(pin int) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeData(pin, false)
}

// Read returns true when pin is active. The chip applies the polarity, so an
// active low pin reads true when it is low.
func (d *Dev) Read(pin int) (bool, error) {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readField(regDataA, pin, flagWidth)
	return v == 1, err
}

// IsActive is the same as Read.
func (d *Dev) IsActive(pin int) (bool, error) {
	return d.Read(pin)
}

// SetEdgeSense selects the transitions of pin that latch an event.
func (d *Dev) SetEdgeSense(pin int, edge Edge) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setEdgeSense(pin, edge)
}

// GetEdgeSense returns the transitions of pin that latch an event.
func (d *Dev) GetEdgeSense(pin int) (Edge, error) {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readField(regSenseLowA, pin, senseWidth)
	return Edge(v), err
}

// DisableEdgeSense stops pin from latching events.
func (d *Dev) DisableEdgeSense(pin int) error {
	return d.SetEdgeSense(pin, EdgeNone)
}

// IsOutput returns true when pin is configured as an output.
func (d *Dev) IsOutput(pin int) (bool, error) {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readField(regDirA, pin, flagWidth)
	return Direction(v) == Output, err
}

// IsInput returns true when pin is configured as an input.
func (d *Dev) IsInput(pin int) (bool, error) {
	out, err := d.IsOutput(pin)
	return !out, err
}

// GetPolarity returns the polarity of pin.
func (d *Dev) GetPolarity(pin int) (Polarity, error) {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readField(regPolarityA, pin, flagWidth)
	return Polarity(v), err
}

// GetPullUpDown returns the resistor configuration of pin.
//
// It panics if both resistors are enabled. The driver never configures that;
// finding it means another master wrote to the chip or the chip is
// misbehaving, and continuing to drive it is unsafe.
func (d *Dev) GetPullUpDown(pin int) (Pull, error) {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getPull(pin)
}

// Configuration reads back every setting of pin.
func (d *Dev) Configuration(pin int) (PinConfiguration, error) {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	var c PinConfiguration
	v, err := d.readField(regDirA, pin, flagWidth)
	if err != nil {
		return c, err
	}
	c.Direction = Direction(v)
	if v, err = d.readField(regPolarityA, pin, flagWidth); err != nil {
		return c, err
	}
	c.Polarity = Polarity(v)
	if c.Pull, err = d.getPull(pin); err != nil {
		return c, err
	}
	if v, err = d.readField(regOpenDrainA, pin, flagWidth); err != nil {
		return c, err
	}
	c.OutputType = PushPull
	if v == 1 {
		c.OutputType = OpenDrain
	}
	if v, err = d.readField(regSenseLowA, pin, senseWidth); err != nil {
		return c, err
	}
	c.Edge = Edge(v)
	if v, err = d.readField(regInterruptMaskA, pin, flagWidth); err != nil {
		return c, err
	}
	c.InterruptEnabled = v == 0
	if v, err = d.readField(regDataA, pin, flagWidth); err != nil {
		return c, err
	}
	c.Active = v == 1
	return c, nil
}

// setOutput configures the driver stage, polarity and level before switching
// the direction, so the pin never drives a stale value.
func (d *Dev) setOutput(pin int, t OutputType, pol Polarity, active bool) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.setOutputType(pin, t); err != nil {
		return err
	}
	if err := d.setPolarity(pin, pol); err != nil {
		return err
	}
	if err := d.writeData(pin, active); err != nil {
		return err
	}
	return d.setDirection(pin, Output)
}

func (d *Dev) setOutputType(pin int, t OutputType) error {
	var v uint8
	switch t {
	case PushPull:
	case OpenDrain:
		v = 1
	case TriState:
		return ErrNotImplemented
	default:
		return fmt.Errorf("sx1509: unsupported output type %s", t)
	}
	return d.writeField(regOpenDrainA, pin, flagWidth, v)
}

func (d *Dev) setPolarity(pin int, pol Polarity) error {
	if pol != ActiveHigh && pol != ActiveLow {
		return fmt.Errorf("sx1509: invalid polarity %s", pol)
	}
	return d.writeField(regPolarityA, pin, flagWidth, uint8(pol))
}

func (d *Dev) setDirection(pin int, dir Direction) error {
	return d.writeField(regDirA, pin, flagWidth, uint8(dir))
}

func (d *Dev) writeData(pin int, active bool) error {
	var v uint8
	if active {
		v = 1
	}
	return d.writeField(regDataA, pin, flagWidth, v)
}

func (d *Dev) setEdgeSense(pin int, edge Edge) error {
	if edge > EdgeBoth {
		return fmt.Errorf("sx1509: invalid edge %s", edge)
	}
	return d.writeField(regSenseLowA, pin, senseWidth, uint8(edge))
}

// enableInterrupt clears or sets the mask bit of pin. A set bit masks the
// interrupt.
func (d *Dev) enableInterrupt(pin int, enable bool) error {
	var v uint8 = 1
	if enable {
		v = 0
	}
	return d.writeField(regInterruptMaskA, pin, flagWidth, v)
}

// setPull clears the resistor that must end up off before setting the
// requested one, so both are never enabled at the same time.
func (d *Dev) setPull(pin int, pull Pull) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	switch pull {
	case PullUp:
		if err := d.writeField(regPullDownA, pin, flagWidth, 0); err != nil {
			return err
		}
		return d.writeField(regPullUpA, pin, flagWidth, 1)
	case PullDown:
		if err := d.writeField(regPullUpA, pin, flagWidth, 0); err != nil {
			return err
		}
		return d.writeField(regPullDownA, pin, flagWidth, 1)
	case PullOff:
		if err := d.writeField(regPullUpA, pin, flagWidth, 0); err != nil {
			return err
		}
		return d.writeField(regPullDownA, pin, flagWidth, 0)
	}
	return fmt.Errorf("sx1509: invalid pull %s", pull)
}

func (d *Dev) getPull(pin int) (Pull, error) {
	up, err := d.readField(regPullUpA, pin, flagWidth)
	if err != nil {
		return PullOff, err
	}
	down, err := d.readField(regPullDownA, pin, flagWidth)
	if err != nil {
		return PullOff, err
	}
	switch {
	case up == 0 && down == 0:
		return PullOff, nil
	case up == 1 && down == 0:
		return PullUp, nil
	case up == 0 && down == 1:
		return PullDown, nil
	}
	panic(fmt.Sprintf("sx1509: %s: pin %d has pull-up and pull-down enabled simultaneously", d.id, pin))
}
