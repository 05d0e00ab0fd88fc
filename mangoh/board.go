// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mangoh

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/mangoh/sx1509"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// ErrNoInterrupt is returned by Board.Run when no host interrupt line is
// configured.
var ErrNoInterrupt = errors.New("mangoh: no interrupt line configured")

// cascadeDebounce is passed for the expander pins carrying a child's INT line.
const cascadeDebounce = time.Millisecond

// pollInterval bounds how long Run waits for an edge before checking its
// context.
const pollInterval = 500 * time.Millisecond

// BusOpener opens an I²C bus by number.
type BusOpener func(bus int) (i2c.BusCloser, error)

// OpenBus opens a bus through i2creg. host.Init must have been called.
func OpenBus(bus int) (i2c.BusCloser, error) {
	return i2creg.Open(strconv.Itoa(bus))
}

// Opts replaces the parts of Open that touch the host.
type Opts struct {
	// Open defaults to OpenBus.
	Open BusOpener
	// IsCharDevice defaults to IsCharDevice.
	IsCharDevice func(path string) bool
	// Interrupt overrides Config.InterruptPin.
	Interrupt gpio.PinIn
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Board is an opened mangOH board.
type Board struct {
	cfg   Config
	devs  []*sx1509.Dev
	roots []*sx1509.Dev
	buses map[int]i2c.BusCloser
	irq   gpio.PinIn
	clock clockwork.Clock
}

// Open opens the buses of cfg, resets every expander and wires the cascaded
// interrupt lines. On failure everything opened so far is closed again.
func Open(cfg Config, opts *Opts) (*Board, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		cfg:   cfg,
		buses: make(map[int]i2c.BusCloser),
		clock: opts.Clock,
	}
	if b.clock == nil {
		b.clock = clockwork.NewRealClock()
	}
	open := opts.Open
	if open == nil {
		open = OpenBus
	}
	if err := b.setup(open, opts); err != nil {
		if cerr := b.Close(); cerr != nil {
			log.WithError(cerr).Warnln("Failed to close partially opened board")
		}
		return nil, err
	}
	return b, nil
}

func (b *Board) setup(open BusOpener, opts *Opts) error {
	offset := 0
	if b.cfg.BusFromPrimary {
		primary, err := DiscoverPrimaryBus(b.cfg.DevDir, opts.IsCharDevice)
		if err != nil {
			return err
		}
		log.WithField("bus", primary).Debugln("Discovered primary I2C bus")
		offset = primary
	}
	bus := func(n int) (i2c.BusCloser, error) {
		if bc, ok := b.buses[n]; ok {
			return bc, nil
		}
		bc, err := open(n)
		if err != nil {
			return nil, fmt.Errorf("mangoh: open I2C bus %d: %w", n, err)
		}
		b.buses[n] = bc
		return bc, nil
	}

	if sw := b.cfg.Switch; sw != nil {
		bc, err := bus(sw.Bus)
		if err != nil {
			return err
		}
		if err := SelectSwitchPorts(bc, sw.Ports...); err != nil {
			return err
		}
		log.WithFields(log.Fields{"bus": sw.Bus, "ports": sw.Ports}).Infoln("Configured I2C switch")
	}

	for _, e := range b.cfg.Expanders {
		n := e.Bus + offset
		bc, err := bus(n)
		if err != nil {
			return err
		}
		dev, err := sx1509.New(bc, sx1509.Identifier{Bus: n, Addr: e.Addr})
		if err != nil {
			return err
		}
		b.devs = append(b.devs, dev)
	}
	if !b.cfg.SkipReset {
		for _, i := range b.cfg.ResetOrder {
			dev := b.devs[i-1]
			if err := dev.Reset(); err != nil {
				return err
			}
			log.WithField("expander", dev).Debugln("Reset GPIO expander")
		}
	}

	for i, e := range b.cfg.Expanders {
		child := b.devs[i]
		if e.Parent == 0 {
			b.roots = append(b.roots, child)
			continue
		}
		if err := b.wireCascade(b.devs[e.Parent-1], e.ParentPin, child); err != nil {
			return err
		}
	}

	b.irq = opts.Interrupt
	if b.irq == nil && b.cfg.InterruptPin != "" {
		p := gpioreg.ByName(b.cfg.InterruptPin)
		if p == nil {
			return fmt.Errorf("mangoh: interrupt pin %q not found", b.cfg.InterruptPin)
		}
		b.irq = p
	}
	if b.irq != nil {
		// The INT line is open drain and active low.
		if err := b.irq.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return fmt.Errorf("mangoh: configure interrupt pin %s: %w", b.irq, err)
		}
	}
	log.WithFields(log.Fields{"board": b.cfg.Variant, "expanders": len(b.devs)}).Infoln("Initialized GPIO expanders")
	return nil
}

// wireCascade makes parent's pin forward interrupts of child.
func (b *Board) wireCascade(parent *sx1509.Dev, pin int, child *sx1509.Dev) error {
	if err := parent.DisableResistors(pin); err != nil {
		return err
	}
	if err := parent.SetInput(pin, sx1509.ActiveLow); err != nil {
		return err
	}
	_, err := parent.AddChangeEventHandler(pin, sx1509.EdgeRising, dispatchChild, child, cascadeDebounce)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"expander": child, "parent": parent, "pin": pin}).Debugln("Wired cascaded interrupt")
	return nil
}

func dispatchChild(_ bool, context interface{}) {
	child := context.(*sx1509.Dev)
	if err := child.Dispatch(); err != nil {
		log.WithError(err).WithField("expander", child).Errorln("Interrupt dispatch failed")
	}
}

// Expander returns expander n, counting from 1 as printed on the board.
func (b *Board) Expander(n int) (*sx1509.Dev, error) {
	if n < 1 || n > len(b.devs) {
		return nil, fmt.Errorf("mangoh: %s has no expander %d", b.cfg.Variant, n)
	}
	return b.devs[n-1], nil
}

// NumExpanders returns how many expanders the board carries.
func (b *Board) NumExpanders() int {
	return len(b.devs)
}

// Pin returns a pin of expander n.
func (b *Board) Pin(n, pin int) (sx1509.Pin, error) {
	dev, err := b.Expander(n)
	if err != nil {
		return nil, err
	}
	if pin < 0 || pin >= sx1509.NumPins {
		return nil, fmt.Errorf("mangoh: expander %d has no pin %d", n, pin)
	}
	return dev.Pins[pin], nil
}

// Config returns the configuration the board was opened with.
func (b *Board) Config() Config {
	return b.cfg
}

// Dispatch services the interrupts of the expanders connected to the host
// line. Cascaded expanders are reached through their parent's handlers.
func (b *Board) Dispatch() error {
	var errs []error
	for _, dev := range b.roots {
		errs = append(errs, dev.Dispatch())
	}
	return errors.Join(errs...)
}

// Run waits for the host interrupt line and dispatches until ctx is done.
// Dispatch errors are logged and don't stop the loop.
func (b *Board) Run(ctx context.Context) error {
	if b.irq == nil {
		return ErrNoInterrupt
	}
	log.WithField("pin", b.irq).Infoln("Waiting for GPIO expander interrupts")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if !b.irq.WaitForEdge(pollInterval) {
			continue
		}
		if b.cfg.Debounce > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-b.clock.After(b.cfg.Debounce):
			}
		}
		if err := b.Dispatch(); err != nil {
			log.WithError(err).Errorln("Interrupt dispatch failed")
		}
	}
}

// Close releases the expanders and the buses.
func (b *Board) Close() error {
	var errs []error
	for _, dev := range b.devs {
		errs = append(errs, dev.Close())
	}
	for _, bc := range b.buses {
		errs = append(errs, bc.Close())
	}
	b.devs = nil
	b.roots = nil
	b.buses = nil
	return errors.Join(errs...)
}
