// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mangoh

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// Variant is a mangOH board model.
type Variant string

const (
	Green Variant = "green"
	Red   Variant = "red"
)

// ExpanderConfig places one expander on the board.
type ExpanderConfig struct {
	Name string
	// Bus is the I²C bus number. With Config.BusFromPrimary it is an offset
	// from the primary bus instead.
	Bus  int
	Addr uint16
	// Parent is the 1-based number of the expander whose pin receives this
	// expander's INT line. 0 means the host interrupt line.
	Parent    int
	ParentPin int
}

// SwitchConfig selects the PCA9548A downstream ports at startup.
type SwitchConfig struct {
	Bus   int
	Ports []SwitchPort
}

// Config describes a board.
type Config struct {
	Variant   Variant
	Expanders []ExpanderConfig
	// ResetOrder lists the 1-based expander numbers in the order they are
	// reset. Parents come before the expanders cascaded onto them.
	ResetOrder []int
	// SkipReset keeps the current chip state, for tools attaching to a
	// board that is already in use.
	SkipReset      bool
	BusFromPrimary bool
	// InterruptPin is the gpioreg name of the host GPIO the root expanders'
	// INT lines are connected to. Empty disables Board.Run.
	InterruptPin string
	// Debounce is how long the interrupt line is left to settle before the
	// expanders are read.
	Debounce time.Duration
	// DevDir holds the i2c-N character devices.
	DevDir string
	Switch *SwitchConfig
}

// GreenConfig is the mangOH Green.
var GreenConfig = Config{
	Variant: Green,
	Expanders: []ExpanderConfig{
		{Name: "gpioExp1", Bus: 5, Addr: 0x3E, Parent: 2, ParentPin: 0},
		{Name: "gpioExp2", Bus: 6, Addr: 0x3F},
		{Name: "gpioExp3", Bus: 7, Addr: 0x70, Parent: 2, ParentPin: 14},
	},
	ResetOrder: []int{2, 1, 3},
	Debounce:   100 * time.Millisecond,
	DevDir:     "/dev",
}

// RedConfig is the mangOH Red.
var RedConfig = Config{
	Variant: Red,
	Expanders: []ExpanderConfig{
		{Name: "gpioExp", Bus: 3, Addr: 0x3E},
	},
	ResetOrder:     []int{1},
	BusFromPrimary: true,
	Debounce:       100 * time.Millisecond,
	DevDir:         "/dev",
}

// ConfigFor returns a copy of the configuration of v.
func ConfigFor(v Variant) (Config, error) {
	var c Config
	switch v {
	case Green:
		c = GreenConfig
	case Red:
		c = RedConfig
	default:
		return Config{}, fmt.Errorf("mangoh: unknown board variant %q", v)
	}
	c.Expanders = append([]ExpanderConfig(nil), c.Expanders...)
	c.ResetOrder = append([]int(nil), c.ResetOrder...)
	return c, nil
}

// Validate checks that the expander references of c are consistent.
func (c *Config) Validate() error {
	n := len(c.Expanders)
	if n == 0 {
		return fmt.Errorf("mangoh: %s: no expanders", c.Variant)
	}
	seen := make(map[int]bool, n)
	for _, i := range c.ResetOrder {
		if i < 1 || i > n {
			return fmt.Errorf("mangoh: %s: reset order references expander %d", c.Variant, i)
		}
		seen[i] = true
	}
	type parentPin struct{ parent, pin int }
	taken := make(map[parentPin]int, n)
	for i, e := range c.Expanders {
		if !seen[i+1] {
			return fmt.Errorf("mangoh: %s: expander %d missing from reset order", c.Variant, i+1)
		}
		if e.Parent == 0 {
			continue
		}
		if e.Parent < 1 || e.Parent > n || e.Parent == i+1 {
			return fmt.Errorf("mangoh: %s: expander %d has invalid parent %d", c.Variant, i+1, e.Parent)
		}
		if e.ParentPin < 0 || e.ParentPin > 15 {
			return fmt.Errorf("mangoh: %s: expander %d has invalid parent pin %d", c.Variant, i+1, e.ParentPin)
		}
		k := parentPin{e.Parent, e.ParentPin}
		if other, ok := taken[k]; ok {
			return fmt.Errorf("mangoh: %s: expanders %d and %d share pin %d.%d", c.Variant, other, i+1, e.Parent, e.ParentPin)
		}
		taken[k] = i + 1
	}
	// Every expander must reach the host line through its parents.
	for i := range c.Expanders {
		cur := i + 1
		for steps := 0; c.Expanders[cur-1].Parent != 0; steps++ {
			if steps == n {
				return fmt.Errorf("mangoh: %s: expander %d is not connected to the host interrupt line", c.Variant, i+1)
			}
			cur = c.Expanders[cur-1].Parent
		}
	}
	return nil
}

// CascadePin reports whether pin of the 1-based expander carries the INT
// line of another expander, and which one. Such pins are owned by the board.
func (c *Config) CascadePin(expander, pin int) (child int, ok bool) {
	for i, e := range c.Expanders {
		if e.Parent != 0 && e.Parent == expander && e.ParentPin == pin {
			return i + 1, true
		}
	}
	return 0, false
}

// BoardFlags holds the command line selection of a board.
type BoardFlags struct {
	Variant      string
	InterruptPin string
	DevDir       string
	Debounce     time.Duration
	NoReset      bool
	SwitchBus    int
	SwitchPorts  string
}

// DefaultBoardFlags selects a mangOH Green.
var DefaultBoardFlags = BoardFlags{
	Variant:   string(Green),
	DevDir:    "/dev",
	Debounce:  100 * time.Millisecond,
	SwitchBus: 0,
}

// RegisterFlags adds the board flags to the flag package.
func (f *BoardFlags) RegisterFlags() {
	flag.StringVar(&f.Variant, "board", f.Variant, "Board variant, green or red")
	flag.StringVar(&f.InterruptPin, "irq", f.InterruptPin, "Host GPIO connected to the expander interrupt line")
	flag.StringVar(&f.DevDir, "devdir", f.DevDir, "Directory holding the i2c-N devices")
	flag.DurationVar(&f.Debounce, "debounce", f.Debounce, "Settle time of the interrupt line")
	flag.BoolVar(&f.NoReset, "no-reset", f.NoReset, "Keep the expanders' current configuration instead of resetting them")
	flag.IntVar(&f.SwitchBus, "switch-bus", f.SwitchBus, "I2C bus of the PCA9548A switch")
	flag.StringVar(&f.SwitchPorts, "switch", f.SwitchPorts, fmt.Sprintf("Comma separated I2C switch ports to enable at startup, of: %v", switchPortNames[:]))
}

// Config turns the flags into a board configuration.
func (f *BoardFlags) Config() (Config, error) {
	c, err := ConfigFor(Variant(strings.ToLower(f.Variant)))
	if err != nil {
		return c, err
	}
	c.InterruptPin = f.InterruptPin
	c.DevDir = f.DevDir
	c.Debounce = f.Debounce
	c.SkipReset = f.NoReset
	if f.SwitchPorts != "" {
		ports, err := ParseSwitchPorts(f.SwitchPorts)
		if err != nil {
			return c, err
		}
		c.Switch = &SwitchConfig{Bus: f.SwitchBus, Ports: ports}
	}
	return c, c.Validate()
}
