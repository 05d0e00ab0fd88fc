// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mangoh

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
)

// SwitchAddr is the address of the PCA9548A I²C switch.
const SwitchAddr uint16 = 0x71

// SwitchPort is a downstream port of the I²C switch.
type SwitchPort uint8

const (
	IoT0 SwitchPort = iota
	IoT1
	IoT2
	UsbHub
	GpioExp1
	GpioExp2
	GpioExp3
	BattCharger
)

var switchPortNames = [...]string{"iot0", "iot1", "iot2", "usbhub", "gpioexp1", "gpioexp2", "gpioexp3", "battcharger"}

func (p SwitchPort) String() string {
	if int(p) < len(switchPortNames) {
		return switchPortNames[p]
	}
	return fmt.Sprintf("SwitchPort(%d)", uint8(p))
}

// ParseSwitchPorts parses a comma separated list of port names.
func ParseSwitchPorts(s string) ([]SwitchPort, error) {
	var out []SwitchPort
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		found := false
		for i, n := range switchPortNames {
			if n == name {
				out = append(out, SwitchPort(i))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("mangoh: unknown switch port %q", name)
		}
	}
	return out, nil
}

// SelectSwitchPorts connects exactly ports to the upstream bus. The switch
// takes a single byte with one bit per port.
func SelectSwitchPorts(bus i2c.Bus, ports ...SwitchPort) error {
	var mask byte
	for _, p := range ports {
		if p > BattCharger {
			return fmt.Errorf("mangoh: invalid switch port %d", uint8(p))
		}
		mask |= 1 << p
	}
	if err := bus.Tx(SwitchAddr, []byte{mask}, nil); err != nil {
		return fmt.Errorf("mangoh: select switch ports 0x%02x: %w", mask, err)
	}
	return nil
}
