// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// mangoh-gpio inspects and drives the GPIO expanders of a mangOH board.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/GermanBionicSystems/mangoh/mangoh"
	"github.com/GermanBionicSystems/mangoh/sx1509"
	"github.com/antongulenko/golib"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"periph.io/x/host/v3"
)

type commandFunc func(b *mangoh.Board) error

var (
	boardFlags = mangoh.DefaultBoardFlags
	command    = "status"
	commands   = map[string]commandFunc{
		"status": status,
		"get":    get,
		"set":    set,
		"in":     in,
		"watch":  watch,
		"mirror": mirror,
	}
	pinFlag   = "1.0"
	outFlag   = "1.1"
	value     = false
	polarity  = "high"
	pull      = "off"
	edge      = "both"
	openDrain = false
	noColor   = false
)

func main() {
	boardFlags.RegisterFlags()
	flag.StringVar(&command, "c", command, fmt.Sprintf("Command to execute, one of: %v", commandNames()))
	flag.StringVar(&pinFlag, "pin", pinFlag, "Pin as <expander>.<pin>, expanders counting from 1")
	flag.StringVar(&outFlag, "out", outFlag, "Output pin of the mirror command")
	flag.BoolVar(&value, "value", value, "Level to drive (set command)")
	flag.StringVar(&polarity, "polarity", polarity, "Pin polarity, high or low")
	flag.StringVar(&pull, "pull", pull, "Resistor of an input, off, up or down")
	flag.StringVar(&edge, "edge", edge, "Edge to watch, rising, falling or both")
	flag.BoolVar(&openDrain, "open-drain", openDrain, "Use the open drain driver (set command)")
	flag.BoolVar(&noColor, "no-color", noColor, "Print pin levels as letters")
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	golib.Checkerr(doMain())
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func doMain() error {
	cmd, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command %v, available commands: %v", command, commandNames())
	}
	cfg, err := boardFlags.Config()
	if err != nil {
		return err
	}
	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := mangoh.Open(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { golib.Printerr(b.Close()) }()
	return cmd(b)
}

func status(b *mangoh.Board) error {
	var palette *ansi256.Palette
	if !noColor && isatty.IsTerminal(os.Stdout.Fd()) {
		palette = ansi256.Default
	}
	strip := &pinStrip{w: colorable.NewColorableStdout(), palette: palette}
	for n := 1; n <= b.NumExpanders(); n++ {
		dev, _ := b.Expander(n)
		pins, err := readConfigurations(dev)
		if err != nil {
			return err
		}
		if err := strip.Write(b.Config().Expanders[n-1].Name, pins); err != nil {
			return err
		}
	}
	return nil
}

func readConfigurations(dev *sx1509.Dev) ([]sx1509.PinConfiguration, error) {
	pins := make([]sx1509.PinConfiguration, sx1509.NumPins)
	for i := range pins {
		c, err := dev.Configuration(i)
		if err != nil {
			return nil, err
		}
		pins[i] = c
	}
	return pins, nil
}

func get(b *mangoh.Board) error {
	n, pin, dev, err := lookup(b, pinFlag)
	if err != nil {
		return err
	}
	c, err := dev.Configuration(pin)
	if err != nil {
		return err
	}
	fmt.Println(describePin(n, pin, c))
	return nil
}

func set(b *mangoh.Board) error {
	_, pin, dev, err := lookup(b, pinFlag)
	if err != nil {
		return err
	}
	pol, err := parsePolarity(polarity)
	if err != nil {
		return err
	}
	if openDrain {
		return dev.SetOpenDrainOutput(pin, pol, value)
	}
	return dev.SetPushPullOutput(pin, pol, value)
}

func in(b *mangoh.Board) error {
	_, pin, dev, err := lookup(b, pinFlag)
	if err != nil {
		return err
	}
	return configureInput(dev, pin)
}

func configureInput(dev *sx1509.Dev, pin int) error {
	pol, err := parsePolarity(polarity)
	if err != nil {
		return err
	}
	p, err := parsePull(pull)
	if err != nil {
		return err
	}
	switch p {
	case sx1509.PullUp:
		err = dev.EnablePullUp(pin)
	case sx1509.PullDown:
		err = dev.EnablePullDown(pin)
	default:
		err = dev.DisableResistors(pin)
	}
	if err != nil {
		return err
	}
	return dev.SetInput(pin, pol)
}

func watch(b *mangoh.Board) error {
	n, pin, dev, err := lookup(b, pinFlag)
	if err != nil {
		return err
	}
	e, err := parseEdge(edge)
	if err != nil {
		return err
	}
	if err := configureInput(dev, pin); err != nil {
		return err
	}
	fields := log.Fields{"expander": n, "pin": pin}
	_, err = dev.AddChangeEventHandler(pin, e, func(active bool, _ interface{}) {
		log.WithFields(fields).WithField("active", active).Infoln("Pin changed")
	}, nil, 0)
	if err != nil {
		return err
	}
	return runUntilSignal(b)
}

// mirror copies an input onto an output, like the card detect demo which
// lights an LED while an IoT card is inserted.
func mirror(b *mangoh.Board) error {
	_, inPin, inDev, err := lookup(b, pinFlag)
	if err != nil {
		return err
	}
	_, outPin, outDev, err := lookup(b, outFlag)
	if err != nil {
		return err
	}
	if err := inDev.DisableResistors(inPin); err != nil {
		return err
	}
	if err := inDev.SetInput(inPin, sx1509.ActiveLow); err != nil {
		return err
	}
	active, err := inDev.Read(inPin)
	if err != nil {
		return err
	}
	if err := outDev.SetPushPullOutput(outPin, sx1509.ActiveHigh, active); err != nil {
		return err
	}
	_, err = inDev.AddChangeEventHandler(inPin, sx1509.EdgeBoth, func(active bool, _ interface{}) {
		var err error
		if active {
			err = outDev.Activate(outPin)
		} else {
			err = outDev.Deactivate(outPin)
		}
		if err != nil {
			log.WithError(err).Errorln("Failed to update mirrored output")
			return
		}
		log.WithField("active", active).Debugln("Mirrored input")
	}, nil, 0)
	if err != nil {
		return err
	}
	return runUntilSignal(b)
}

func runUntilSignal(b *mangoh.Board) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err := b.Run(ctx)
	if errors.Is(err, mangoh.ErrNoInterrupt) {
		return fmt.Errorf("%w: pass the host GPIO with -irq", err)
	}
	return err
}

func lookup(b *mangoh.Board, s string) (int, int, *sx1509.Dev, error) {
	n, pin, err := parseFreePin(b.Config(), s)
	if err != nil {
		return 0, 0, nil, err
	}
	if _, err := b.Pin(n, pin); err != nil {
		return 0, 0, nil, err
	}
	dev, err := b.Expander(n)
	return n, pin, dev, err
}

// parseFreePin is parsePin rejecting the pins that carry another expander's
// interrupt line.
func parseFreePin(cfg mangoh.Config, s string) (int, int, error) {
	n, pin, err := parsePin(s)
	if err != nil {
		return 0, 0, err
	}
	if child, ok := cfg.CascadePin(n, pin); ok {
		return 0, 0, fmt.Errorf("pin %d.%d carries the interrupt line of expander %d and is reserved", n, pin, child)
	}
	return n, pin, nil
}

// parsePin parses "<expander>.<pin>".
func parsePin(s string) (expander, pin int, err error) {
	e, p, ok := strings.Cut(s, ".")
	if !ok {
		return 0, 0, fmt.Errorf("invalid pin %q, expected <expander>.<pin>", s)
	}
	if expander, err = strconv.Atoi(e); err != nil || expander < 1 {
		return 0, 0, fmt.Errorf("invalid expander in pin %q", s)
	}
	if pin, err = strconv.Atoi(p); err != nil || pin < 0 || pin >= sx1509.NumPins {
		return 0, 0, fmt.Errorf("invalid pin number in pin %q", s)
	}
	return expander, pin, nil
}

func parsePolarity(s string) (sx1509.Polarity, error) {
	switch strings.ToLower(s) {
	case "high":
		return sx1509.ActiveHigh, nil
	case "low":
		return sx1509.ActiveLow, nil
	}
	return 0, fmt.Errorf("invalid polarity %q", s)
}

func parsePull(s string) (sx1509.Pull, error) {
	switch strings.ToLower(s) {
	case "off", "none", "":
		return sx1509.PullOff, nil
	case "up":
		return sx1509.PullUp, nil
	case "down":
		return sx1509.PullDown, nil
	}
	return 0, fmt.Errorf("invalid pull %q", s)
}

func parseEdge(s string) (sx1509.Edge, error) {
	switch strings.ToLower(s) {
	case "rising":
		return sx1509.EdgeRising, nil
	case "falling":
		return sx1509.EdgeFalling, nil
	case "both":
		return sx1509.EdgeBoth, nil
	}
	return 0, fmt.Errorf("invalid edge %q", s)
}
