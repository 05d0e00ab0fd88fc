// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import (
	"errors"
	"fmt"
	"time"
)

// ChangeFunc is called by Dispatch for a pin that latched an event. active
// is the pin's level at dispatch time, after polarity is applied.
type ChangeFunc func(active bool, context interface{})

type handlerRecord struct {
	fn      ChangeFunc
	context interface{}
}

// HandlerRef identifies one registration made by AddChangeEventHandler. The
// zero value matches no registration.
type HandlerRef struct {
	r *handlerRecord
}

// AddChangeEventHandler registers fn to be called by Dispatch when pin sees
// edge, and unmasks the pin's interrupt.
//
// debounce is accepted for API compatibility and ignored: the chip's
// debouncer needs its internal oscillator, which the driver leaves off.
// Callers that need debouncing apply it before calling Dispatch.
//
// It panics if pin already has a handler or fn is nil. If configuring the
// chip fails the registration is undone and the error is returned.
func (d *Dev) AddChangeEventHandler(pin int, edge Edge, fn ChangeFunc, context interface{}, debounce time.Duration) (HandlerRef, error) {
	d.checkPin(pin)
	if fn == nil {
		panic(fmt.Sprintf("sx1509: %s: nil change handler for pin %d", d.id, pin))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers[pin] != nil {
		panic(fmt.Sprintf("sx1509: %s: pin %d already has a change handler", d.id, pin))
	}
	r := &handlerRecord{fn: fn, context: context}
	d.handlers[pin] = r
	err := d.setEdgeSense(pin, edge)
	if err == nil {
		err = d.enableInterrupt(pin, true)
	}
	if err != nil {
		d.handlers[pin] = nil
		// Best effort; the first error is the one worth reporting.
		_ = d.enableInterrupt(pin, false)
		_ = d.setEdgeSense(pin, EdgeNone)
		return HandlerRef{}, err
	}
	return HandlerRef{r: r}, nil
}

// RemoveChangeEventHandler undoes AddChangeEventHandler. The pin's interrupt
// is masked, its edge sense disabled and any event it latched meanwhile is
// cleared.
//
// It panics if ref is not the current registration for pin. The handler is
// forgotten even when the chip cannot be reconfigured; the error is returned.
func (d *Dev) RemoveChangeEventHandler(pin int, ref HandlerRef) error {
	d.checkPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	if ref.r == nil || d.handlers[pin] != ref.r {
		panic(fmt.Sprintf("sx1509: %s: handler reference does not match the handler of pin %d", d.id, pin))
	}
	d.handlers[pin] = nil
	if err := d.enableInterrupt(pin, false); err != nil {
		return err
	}
	if err := d.setEdgeSense(pin, EdgeNone); err != nil {
		return err
	}
	// Event status is write-1-to-clear: only this pin's bit is written.
	f := locateField(regEventStatusA, pin, flagWidth)
	return d.writeRegister(f.reg, 1<<f.offset)
}

// Dispatch services the chip's INT line. It reads and clears the latched
// events, samples the level of the pins that fired and calls their handlers
// in increasing pin order.
//
// Handlers run on the caller's goroutine after the device lock is released,
// so they may use the device, including registering or removing handlers. A
// handler removed by an earlier handler of the same dispatch is not called.
//
// A failed register access doesn't stop the dispatch; the affected bank is
// treated as 0 and the errors are returned once all handlers ran.
//
// It panics if a pin latched an event but has no handler.
func (d *Dev) Dispatch() error {
	calls, errs := d.collectEvents()
	for _, c := range calls {
		if !d.handlerRegistered(c.pin, c.r) {
			continue
		}
		c.r.fn(c.active, c.r.context)
	}
	return errors.Join(errs...)
}

type pendingCall struct {
	pin    int
	r      *handlerRecord
	active bool
}

// handlerRegistered reports whether r is still the handler of pin.
func (d *Dev) handlerRegistered(pin int, r *handlerRecord) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handlers[pin] == r
}

func (d *Dev) collectEvents() ([]pendingCall, []error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	read := func(reg uint8) uint8 {
		v, err := d.readRegister(reg)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	write := func(reg, v uint8) {
		if err := d.writeRegister(reg, v); err != nil {
			errs = append(errs, err)
		}
	}

	statusB := read(regEventStatusB)
	statusA := read(regEventStatusA)
	write(regEventStatusB, statusB)
	write(regEventStatusA, statusA)
	var dataB, dataA uint8
	if statusB != 0 {
		dataB = read(regDataB)
	}
	if statusA != 0 {
		dataA = read(regDataA)
	}
	status := uint16(statusB)<<8 | uint16(statusA)
	data := uint16(dataB)<<8 | uint16(dataA)

	var calls []pendingCall
	for i := range NumPins {
		if status&(1<<i) == 0 {
			continue
		}
		r := d.handlers[i]
		if r == nil {
			panic(fmt.Sprintf("sx1509: %s: interrupt on pin %d which has no change handler", d.id, i))
		}
		calls = append(calls, pendingCall{pin: i, r: r, active: data&(1<<i) != 0})
	}
	return calls, errs
}
