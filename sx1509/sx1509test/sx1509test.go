// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sx1509test provides a simulated SX1509 to test code that drives the
// chip over I²C.
//
// Unlike i2ctest.Playback, which checks an exact transaction script, Chip
// keeps a register file so tests can assert on the resulting state.
package sx1509test

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// NumRegisters is the size of the simulated register file.
const NumRegisters = 0x80

const (
	regDirB           = 0x0E
	regDirA           = 0x0F
	regDataB          = 0x10
	regDataA          = 0x11
	regInterruptMaskB = 0x12
	regInterruptMaskA = 0x13
	regSenseLowA      = 0x17
	regEventStatusB   = 0x1A
	regEventStatusA   = 0x1B
	regReset          = 0x7D
)

// ErrInjected is returned by Chip.Tx for a transaction selected by Fail.
var ErrInjected = errors.New("sx1509test: injected failure")

// Chip implements i2c.Bus and answers as a single SX1509.
//
// Register reads and writes follow the chip: the event status registers are
// write-1-to-clear and writing 0x12 then 0x34 to the reset register restores
// the power-on values.
type Chip struct {
	sync.Mutex
	// Addr is the address the chip answers to.
	Addr uint16
	// Regs is the register file.
	Regs [NumRegisters]byte
	// Ops is every successful transaction, in order.
	Ops []i2ctest.IO
	// Fail, when set, is consulted before every access. Returning true fails
	// the transaction without touching the registers.
	Fail func(reg byte, write bool) bool

	resetArmed bool
}

// NewChip returns a chip at addr in its power-on state.
func NewChip(addr uint16) *Chip {
	c := &Chip{Addr: addr}
	c.powerOn()
	return c
}

func (c *Chip) powerOn() {
	c.Regs = [NumRegisters]byte{}
	c.Regs[regDirB] = 0xFF
	c.Regs[regDirA] = 0xFF
	c.Regs[regInterruptMaskB] = 0xFF
	c.Regs[regInterruptMaskA] = 0xFF
	c.resetArmed = false
}

func (c *Chip) String() string {
	return fmt.Sprintf("sx1509test(0x%02x)", c.Addr)
}

// Tx implements i2c.Bus. A one byte write selects the register to read; a two
// byte write stores one register.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.Lock()
	defer c.Unlock()
	if addr != c.Addr {
		return fmt.Errorf("sx1509test: no device at 0x%02x", addr)
	}
	switch {
	case len(w) == 1 && len(r) == 1:
		reg := w[0]
		if reg >= NumRegisters {
			return fmt.Errorf("sx1509test: register 0x%02x out of range", reg)
		}
		if c.Fail != nil && c.Fail(reg, false) {
			return ErrInjected
		}
		r[0] = c.Regs[reg]
	case len(w) == 2 && len(r) == 0:
		reg, v := w[0], w[1]
		if reg >= NumRegisters {
			return fmt.Errorf("sx1509test: register 0x%02x out of range", reg)
		}
		if c.Fail != nil && c.Fail(reg, true) {
			return ErrInjected
		}
		c.write(reg, v)
	default:
		return fmt.Errorf("sx1509test: unsupported transaction w=%#v r=%d", w, len(r))
	}
	io := i2ctest.IO{Addr: addr, W: append([]byte(nil), w...)}
	if len(r) != 0 {
		io.R = append([]byte(nil), r...)
	}
	c.Ops = append(c.Ops, io)
	return nil
}

func (c *Chip) write(reg, v byte) {
	switch reg {
	case regEventStatusB, regEventStatusA:
		c.Regs[reg] &^= v
	case regReset:
		switch {
		case v == 0x12:
			c.resetArmed = true
		case v == 0x34 && c.resetArmed:
			c.powerOn()
		default:
			c.resetArmed = false
		}
	default:
		c.Regs[reg] = v
	}
}

// SetSpeed implements i2c.Bus.
func (c *Chip) SetSpeed(f physic.Frequency) error {
	return nil
}

// Reg returns the value of a register.
func (c *Chip) Reg(reg byte) byte {
	c.Lock()
	defer c.Unlock()
	return c.Regs[reg]
}

// SetReg stores a register without any side effect.
func (c *Chip) SetReg(reg, v byte) {
	c.Lock()
	defer c.Unlock()
	c.Regs[reg] = v
}

// Bit returns bit pin of the register pair whose bank A register is regA.
func (c *Chip) Bit(regA byte, pin int) bool {
	c.Lock()
	defer c.Unlock()
	reg, off := regA-byte(pin/8), uint(pin%8)
	return c.Regs[reg]&(1<<off) != 0
}

// Drive changes the level seen on pin, as if an external signal moved it, and
// latches an event when the pin's sense configuration matches the
// transition. The level is the logical one stored in the data register.
func (c *Chip) Drive(pin int, level bool) {
	c.Lock()
	defer c.Unlock()
	dataReg, bit := byte(regDataA-pin/8), byte(1)<<uint(pin%8)
	old := c.Regs[dataReg]&bit != 0
	if level {
		c.Regs[dataReg] |= bit
	} else {
		c.Regs[dataReg] &^= bit
	}
	if old == level {
		return
	}
	senseReg := byte(regSenseLowA - (pin*2)/8)
	sense := (c.Regs[senseReg] >> uint((pin*2)%8)) & 3
	if (level && sense&1 != 0) || (!level && sense&2 != 0) {
		c.Regs[regEventStatusA-pin/8] |= bit
	}
}

// Writes returns the register writes performed so far, as {reg, value}
// pairs.
func (c *Chip) Writes() [][2]byte {
	c.Lock()
	defer c.Unlock()
	var out [][2]byte
	for _, io := range c.Ops {
		if len(io.W) == 2 {
			out = append(out, [2]byte{io.W[0], io.W[1]})
		}
	}
	return out
}

// ResetOps forgets the recorded transactions.
func (c *Chip) ResetOps() {
	c.Lock()
	defer c.Unlock()
	c.Ops = nil
}
