// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mangoh

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// ErrNoPrimaryBus is returned when none of the candidate primary buses exist.
var ErrNoPrimaryBus = errors.New("mangoh: couldn't determine the primary I2C bus")

// Module variants expose their primary bus as one of these.
var primaryBusCandidates = [...]int{0, 4}

// DiscoverPrimaryBus returns the first candidate bus whose i2c-N device in
// devDir is a character device. isCharDevice may be nil.
func DiscoverPrimaryBus(devDir string, isCharDevice func(path string) bool) (int, error) {
	if isCharDevice == nil {
		isCharDevice = IsCharDevice
	}
	for _, n := range primaryBusCandidates {
		if isCharDevice(filepath.Join(devDir, "i2c-"+strconv.Itoa(n))) {
			return n, nil
		}
	}
	return 0, ErrNoPrimaryBus
}

// IsCharDevice reports whether path exists and is a character device.
func IsCharDevice(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
