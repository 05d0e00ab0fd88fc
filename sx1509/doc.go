// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sx1509 provides a driver for the Semtech SX1509 16 channel I²C GPIO
// expander.
//
// The chip exposes its 16 GPIOs as two 8 bit banks. Pins 0 to 7 are bank A
// and pins 8 to 15 are bank B. Every per-pin register exists once per bank,
// with the bank B register sitting at the address just below its bank A
// counterpart. Each pin operation is a read-modify-write of the bits that
// belong to that pin, so neighbouring pins sharing a register are never
// disturbed.
//
// Edge detection is reported on the chip's INT line, which must be wired to a
// host GPIO (or to a pin of another expander). Call Dev.Dispatch when that line
// asserts; it reads and clears the latched event status and calls the handler
// registered for every pin that fired.
//
// Both a pin-number oriented API on Dev and per pin gpio.PinIO objects are
// available. The pins are registered in gpioreg as
// SX1509_<bus>_<addr>_IO<pin>.
//
// # Datasheet
//
// https://cdn.sparkfun.com/datasheets/BreakoutBoards/sx1509.pdf
package sx1509
