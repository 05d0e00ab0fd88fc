// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/mangoh/sx1509/sx1509test"
)

func TestLocateField(t *testing.T) {
	data := []struct {
		base  uint8
		pin   int
		width uint8
		want  field
	}{
		{regDirA, 0, flagWidth, field{reg: 0x0F, offset: 0, width: 1}},
		{regDirA, 7, flagWidth, field{reg: 0x0F, offset: 7, width: 1}},
		{regDirA, 8, flagWidth, field{reg: 0x0E, offset: 0, width: 1}},
		{regDirA, 15, flagWidth, field{reg: 0x0E, offset: 7, width: 1}},
		{regPullUpA, 9, flagWidth, field{reg: 0x06, offset: 1, width: 1}},
		{regSenseLowA, 0, senseWidth, field{reg: 0x17, offset: 0, width: 2}},
		{regSenseLowA, 3, senseWidth, field{reg: 0x17, offset: 6, width: 2}},
		{regSenseLowA, 4, senseWidth, field{reg: 0x16, offset: 0, width: 2}},
		{regSenseLowA, 9, senseWidth, field{reg: 0x15, offset: 2, width: 2}},
		{regSenseLowA, 15, senseWidth, field{reg: 0x14, offset: 6, width: 2}},
	}
	for i, line := range data {
		if got := locateField(line.base, line.pin, line.width); got != line.want {
			t.Errorf("#%d: locateField(0x%02x, %d, %d) = %s; want %s", i, line.base, line.pin, line.width, got, line.want)
		}
	}
}

func TestBankSplit(t *testing.T) {
	bases := []uint8{regPullUpA, regPullDownA, regOpenDrainA, regPolarityA, regDirA, regDataA, regInterruptMaskA}
	for _, base := range bases {
		for pin := range NumPins {
			f := locateField(base, pin, flagWidth)
			want := base
			if pin >= 8 {
				want = base - 1
			}
			if f.reg != want {
				t.Errorf("pin %d base 0x%02x: reg 0x%02x; want 0x%02x", pin, base, f.reg, want)
			}
		}
	}
}

func TestFieldRoundTrip(t *testing.T) {
	// Background patterns the other fields of the register hold.
	backgrounds := []uint8{0x00, 0xFF, 0xA5, 0x5A}
	for _, width := range []uint8{flagWidth, senseWidth} {
		for pin := range NumPins {
			f := locateField(regSenseLowA, pin, width)
			for value := uint8(0); value < 1<<width; value++ {
				for _, bg := range backgrounds {
					bits, mask := packField(value, f.offset, f.width)
					got := (bg &^ mask) | bits
					if v := extractField(got, f.offset, f.width); v != value {
						t.Fatalf("pin %d width %d: read back %d; want %d", pin, width, v, value)
					}
					if got&^mask != bg&^mask {
						t.Fatalf("pin %d width %d: other bits changed 0x%02x -> 0x%02x", pin, width, bg, got)
					}
				}
			}
		}
	}
}

func TestWriteField_preservesNeighbours(t *testing.T) {
	chip := sx1509test.NewChip(0x3E)
	chip.SetReg(0x15, 0xC3)
	d := newDev(t, chip)
	d.mu.Lock()
	err := d.writeField(regSenseLowA, 9, senseWidth, uint8(EdgeBoth))
	d.mu.Unlock()
	if err != nil {
		t.Fatal(err)
	}
	if v := chip.Reg(0x15); v != 0xCF {
		t.Fatalf("0x15 = 0x%02x; want 0xCF", v)
	}
}

func TestUpdateRegister_readFailure(t *testing.T) {
	chip := sx1509test.NewChip(0x3E)
	chip.Fail = func(reg byte, write bool) bool { return !write }
	d := newDev(t, chip)
	d.mu.Lock()
	err := d.updateRegister(regDirA, 0, 1)
	d.mu.Unlock()
	if !errors.Is(err, sx1509test.ErrInjected) {
		t.Fatalf("got %v; want ErrInjected", err)
	}
	if w := chip.Writes(); len(w) != 0 {
		t.Fatalf("unexpected writes %v", w)
	}
}

func TestUpdateRegister_writeFailure(t *testing.T) {
	chip := sx1509test.NewChip(0x3E)
	chip.Fail = func(reg byte, write bool) bool { return write }
	d := newDev(t, chip)
	d.mu.Lock()
	err := d.updateRegister(regDirA, 0, 1)
	d.mu.Unlock()
	if !errors.Is(err, sx1509test.ErrInjected) {
		t.Fatalf("got %v; want ErrInjected", err)
	}
	if v := chip.Reg(regDirA); v != 0xFF {
		t.Fatalf("dir = 0x%02x; want unchanged 0xFF", v)
	}
}
