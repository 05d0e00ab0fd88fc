// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509

import (
	"errors"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/mangoh/sx1509/sx1509test"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestSetPushPullOutput_order(t *testing.T) {
	scenario := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// open drain off
			{Addr: address, W: []byte{0x0B}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x0B, 0x00}},
			// polarity
			{Addr: address, W: []byte{0x0D}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x0D, 0x00}},
			// data
			{Addr: address, W: []byte{0x11}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x11, 0x01}},
			// direction last
			{Addr: address, W: []byte{0x0F}, R: []byte{0xFF}},
			{Addr: address, W: []byte{0x0F, 0xFE}},
		},
	}
	d := newDev(t, scenario)
	if err := d.SetPushPullOutput(0, ActiveHigh, true); err != nil {
		t.Fatal(err)
	}
	if err := scenario.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSetOpenDrainOutput_bankB(t *testing.T) {
	scenario := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: address, W: []byte{0x0A}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x0A, 0x02}},
			{Addr: address, W: []byte{0x0C}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x0C, 0x02}},
			{Addr: address, W: []byte{0x10}, R: []byte{0x82}},
			{Addr: address, W: []byte{0x10, 0x80}},
			{Addr: address, W: []byte{0x0E}, R: []byte{0xFF}},
			{Addr: address, W: []byte{0x0E, 0xFD}},
		},
	}
	d := newDev(t, scenario)
	if err := d.SetOpenDrainOutput(9, ActiveLow, false); err != nil {
		t.Fatal(err)
	}
	if err := scenario.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSetOutput_directionWrittenLast(t *testing.T) {
	chip := sx1509test.NewChip(address)
	d := newDev(t, chip)
	if err := d.SetPushPullOutput(4, ActiveHigh, true); err != nil {
		t.Fatal(err)
	}
	w := chip.Writes()
	if len(w) != 4 {
		t.Fatalf("got %d writes; want 4", len(w))
	}
	want := []byte{0x0B, 0x0D, 0x11, 0x0F}
	for i, reg := range want {
		if w[i][0] != reg {
			t.Fatalf("write #%d to 0x%02x; want 0x%02x", i, w[i][0], reg)
		}
	}
	if !chip.Bit(regDataA, 4) || chip.Bit(regDirA, 4) {
		t.Fatal("pin 4 is not an active output")
	}
}

func TestSetOutput_stopsOnFailure(t *testing.T) {
	chip := sx1509test.NewChip(address)
	chip.Fail = func(reg byte, write bool) bool { return write && reg == 0x0D }
	d := newDev(t, chip)
	err := d.SetPushPullOutput(0, ActiveLow, true)
	if !errors.Is(err, sx1509test.ErrInjected) {
		t.Fatalf("got %v; want ErrInjected", err)
	}
	if !strings.Contains(err.Error(), "SX1509_5_3e") {
		t.Fatalf("error %q doesn't name the chip", err)
	}
	if chip.Bit(regDataA, 0) || !chip.Bit(regDirA, 0) {
		t.Fatal("pin 0 changed after the failure")
	}
}

func TestSetInput(t *testing.T) {
	scenario := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: address, W: []byte{0x0D}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x0D, 0x04}},
			{Addr: address, W: []byte{0x0F}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x0F, 0x04}},
		},
	}
	d := newDev(t, scenario)
	if err := d.SetInput(2, ActiveLow); err != nil {
		t.Fatal(err)
	}
	if err := scenario.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEnablePullUp_clearsPullDownFirst(t *testing.T) {
	scenario := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: address, W: []byte{0x09}, R: []byte{0x01}},
			{Addr: address, W: []byte{0x09, 0x00}},
			{Addr: address, W: []byte{0x07}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x07, 0x01}},
		},
	}
	d := newDev(t, scenario)
	if err := d.EnablePullUp(0); err != nil {
		t.Fatal(err)
	}
	if err := scenario.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPulls_exclusive(t *testing.T) {
	chip := sx1509test.NewChip(address)
	d := newDev(t, chip)
	for pin := range NumPins {
		if err := d.EnablePullDown(pin); err != nil {
			t.Fatal(err)
		}
		if err := d.EnablePullUp(pin); err != nil {
			t.Fatal(err)
		}
		if p, err := d.GetPullUpDown(pin); err != nil || p != PullUp {
			t.Fatalf("pin %d: %s, %v; want PullUp", pin, p, err)
		}
		if chip.Bit(regPullDownA, pin) {
			t.Fatalf("pin %d: pull-down still enabled", pin)
		}
		if err := d.EnablePullDown(pin); err != nil {
			t.Fatal(err)
		}
		if p, err := d.GetPullUpDown(pin); err != nil || p != PullDown {
			t.Fatalf("pin %d: %s, %v; want PullDown", pin, p, err)
		}
		if chip.Bit(regPullUpA, pin) {
			t.Fatalf("pin %d: pull-up still enabled", pin)
		}
	}
}

func TestDisableResistors_idempotent(t *testing.T) {
	chip := sx1509test.NewChip(address)
	chip.SetReg(0x06, 0xFF)
	chip.SetReg(0x09, 0x0F)
	d := newDev(t, chip)
	if err := d.DisableResistors(10); err != nil {
		t.Fatal(err)
	}
	first := chip.Regs
	if err := d.DisableResistors(10); err != nil {
		t.Fatal(err)
	}
	if chip.Regs != first {
		t.Fatal("second call changed the registers")
	}
	if chip.Bit(regPullUpA, 10) || chip.Bit(regPullDownA, 10) {
		t.Fatal("resistor still enabled")
	}
	if v := chip.Reg(0x06); v != 0xFB {
		t.Fatalf("pull-up B = 0x%02x; want 0xFB", v)
	}
	if p, err := d.GetPullUpDown(10); err != nil || p != PullOff {
		t.Fatalf("%s, %v; want PullOff", p, err)
	}
}

func TestGetPullUpDown_conflict(t *testing.T) {
	chip := sx1509test.NewChip(address)
	chip.SetReg(regPullUpA, 0x01)
	chip.SetReg(regPullDownA, 0x01)
	d := newDev(t, chip)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_, _ = d.GetPullUpDown(0)
}

func TestNotImplemented(t *testing.T) {
	chip := sx1509test.NewChip(address)
	d := newDev(t, chip)
	if err := d.SetTriStateOutput(1, ActiveHigh); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("SetTriStateOutput: %v", err)
	}
	if err := d.SetHighZ(1); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("SetHighZ: %v", err)
	}
	if len(chip.Ops) != 0 {
		t.Fatal("unexpected bus traffic")
	}
}

func TestAccessors_transportError(t *testing.T) {
	chip := sx1509test.NewChip(address)
	chip.Fail = func(byte, bool) bool { return true }
	d := newDev(t, chip)
	if _, err := d.Read(3); !errors.Is(err, sx1509test.ErrInjected) {
		t.Fatalf("Read: %v", err)
	}
	if _, err := d.GetEdgeSense(3); err == nil {
		t.Fatal("GetEdgeSense: expected error")
	}
	if _, err := d.IsOutput(3); err == nil {
		t.Fatal("IsOutput: expected error")
	}
	if _, err := d.GetPolarity(3); err == nil {
		t.Fatal("GetPolarity: expected error")
	}
	if _, err := d.GetPullUpDown(3); err == nil {
		t.Fatal("GetPullUpDown: expected error")
	}
	if err := d.Activate(3); err == nil {
		t.Fatal("Activate: expected error")
	}
}

func TestEdgeSense(t *testing.T) {
	chip := sx1509test.NewChip(address)
	d := newDev(t, chip)
	for pin := range NumPins {
		for _, e := range []Edge{EdgeRising, EdgeFalling, EdgeBoth, EdgeNone} {
			if err := d.SetEdgeSense(pin, e); err != nil {
				t.Fatal(err)
			}
			if got, err := d.GetEdgeSense(pin); err != nil || got != e {
				t.Fatalf("pin %d: %s, %v; want %s", pin, got, err, e)
			}
		}
		if err := d.SetEdgeSense(pin, EdgeBoth); err != nil {
			t.Fatal(err)
		}
	}
	// Every pin set to both edges fills all four sense registers.
	for reg := byte(0x14); reg <= 0x17; reg++ {
		if v := chip.Reg(reg); v != 0xFF {
			t.Fatalf("0x%02x = 0x%02x; want 0xFF", reg, v)
		}
	}
	if err := d.DisableEdgeSense(15); err != nil {
		t.Fatal(err)
	}
	if v := chip.Reg(0x14); v != 0x3F {
		t.Fatalf("0x14 = 0x%02x; want 0x3F", v)
	}
	if err := d.SetEdgeSense(0, Edge(4)); err == nil {
		t.Fatal("expected error for invalid edge")
	}
}

func TestActivate(t *testing.T) {
	chip := sx1509test.NewChip(address)
	d := newDev(t, chip)
	if err := d.SetPushPullOutput(12, ActiveHigh, false); err != nil {
		t.Fatal(err)
	}
	if err := d.Activate(12); err != nil {
		t.Fatal(err)
	}
	if v, err := d.IsActive(12); err != nil || !v {
		t.Fatalf("IsActive = %t, %v", v, err)
	}
	if err := d.Deactivate(12); err != nil {
		t.Fatal(err)
	}
	if v, err := d.Read(12); err != nil || v {
		t.Fatalf("Read = %t, %v", v, err)
	}
	if out, err := d.IsOutput(12); err != nil || !out {
		t.Fatalf("IsOutput = %t, %v", out, err)
	}
	if in, err := d.IsInput(11); err != nil || !in {
		t.Fatalf("IsInput(11) = %t, %v", in, err)
	}
}

func TestConfiguration(t *testing.T) {
	chip := sx1509test.NewChip(address)
	d := newDev(t, chip)
	if err := d.SetOpenDrainOutput(6, ActiveLow, true); err != nil {
		t.Fatal(err)
	}
	if err := d.EnablePullUp(6); err != nil {
		t.Fatal(err)
	}
	if err := d.SetEdgeSense(6, EdgeFalling); err != nil {
		t.Fatal(err)
	}
	c, err := d.Configuration(6)
	if err != nil {
		t.Fatal(err)
	}
	want := PinConfiguration{
		Direction:  Output,
		Polarity:   ActiveLow,
		Pull:       PullUp,
		OutputType: OpenDrain,
		Edge:       EdgeFalling,
		Active:     true,
	}
	if c != want {
		t.Fatalf("got %+v; want %+v", c, want)
	}
}
