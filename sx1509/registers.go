// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import "fmt"

// Register addresses used by the driver. Only the bank A address of a per-pin
// register is needed; bank B is the address below it.
const (
	regPullUpA        uint8 = 0x07
	regPullDownA      uint8 = 0x09
	regOpenDrainA     uint8 = 0x0B
	regPolarityA      uint8 = 0x0D
	regDirA           uint8 = 0x0F
	regDataB          uint8 = 0x10
	regDataA          uint8 = 0x11
	regInterruptMaskA uint8 = 0x13
	regSenseLowA      uint8 = 0x17
	regEventStatusB   uint8 = 0x1A
	regEventStatusA   uint8 = 0x1B
	regReset          uint8 = 0x7D
)

// Writing these two bytes in order to regReset performs a software reset.
var resetSequence = [...]uint8{0x12, 0x34}

// Field widths in bits.
const (
	flagWidth  uint8 = 1
	senseWidth uint8 = 2
)

// field is the location of one pin's bits in the register map.
type field struct {
	reg    uint8
	offset uint8
	width  uint8
}

// locateField returns where pin's field lives, given the register holding the
// field of pin 0. Fields are packed from the least significant bit of base
// upward; once a register is full the next one is at the address below it.
func locateField(base uint8, pin int, width uint8) field {
	total := uint8(pin) * width
	return field{reg: base - total/8, offset: total % 8, width: width}
}

func createMask(width uint8) uint8 {
	return (1 << width) - 1
}

// extractField returns the width bits of v found at offset.
func extractField(v, offset, width uint8) uint8 {
	return (v >> offset) & createMask(width)
}

// packField shifts value into position and returns it along with the mask
// covering the field.
func packField(value, offset, width uint8) (bits, mask uint8) {
	mask = createMask(width) << offset
	return (value << offset) & mask, mask
}

func (f field) String() string {
	return fmt.Sprintf("0x%02x[%d:%d]", f.reg, f.offset+f.width-1, f.offset)
}

// readRegister reads one register. The caller must hold d.mu.
func (d *Dev) readRegister(reg uint8) (uint8, error) {
	rx := make([]byte, 1)
	if err := d.d.Tx([]byte{reg}, rx); err != nil {
		return 0, fmt.Errorf("sx1509: %s: read register 0x%02x: %w", d.id, reg, err)
	}
	return rx[0], nil
}

// writeRegister writes one register. The caller must hold d.mu.
func (d *Dev) writeRegister(reg, value uint8) error {
	if err := d.d.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("sx1509: %s: write register 0x%02x: %w", d.id, reg, err)
	}
	return nil
}

// updateRegister replaces the bits of reg selected by mask. A failed read
// leaves the register untouched. The caller must hold d.mu.
func (d *Dev) updateRegister(reg, bits, mask uint8) error {
	v, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, (v&^mask)|(bits&mask))
}

// readField returns pin's field, shifted down to bit 0.
func (d *Dev) readField(base uint8, pin int, width uint8) (uint8, error) {
	f := locateField(base, pin, width)
	v, err := d.readRegister(f.reg)
	if err != nil {
		return 0, err
	}
	return extractField(v, f.offset, f.width), nil
}

// writeField stores value into pin's field.
func (d *Dev) writeField(base uint8, pin int, width, value uint8) error {
	f := locateField(base, pin, width)
	bits, mask := packField(value, f.offset, f.width)
	return d.updateRegister(f.reg, bits, mask)
}
