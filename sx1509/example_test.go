// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sx1509_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/mangoh/sx1509"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	bus, err := i2creg.Open("5")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	dev, err := sx1509.New(bus, sx1509.Identifier{Bus: 5, Addr: 0x3E})
	if err != nil {
		log.Fatalln(err)
	}
	defer dev.Close()
	if err := dev.Reset(); err != nil {
		log.Fatalln(err)
	}

	// Pin 3 is an active low button, pin 4 drives an LED.
	if err := dev.SetInput(3, sx1509.ActiveLow); err != nil {
		log.Fatalln(err)
	}
	if err := dev.EnablePullUp(3); err != nil {
		log.Fatalln(err)
	}
	if err := dev.SetPushPullOutput(4, sx1509.ActiveHigh, false); err != nil {
		log.Fatalln(err)
	}
	_, err = dev.AddChangeEventHandler(3, sx1509.EdgeBoth, func(active bool, _ interface{}) {
		if err := dev.SetPushPullOutput(4, sx1509.ActiveHigh, active); err != nil {
			log.Println(err)
		}
	}, nil, 0)
	if err != nil {
		log.Fatalln(err)
	}

	// The chip's INT line is wired to a host GPIO.
	irq := gpioreg.ByName("GPIO42")
	if irq == nil {
		log.Fatalln("no interrupt pin")
	}
	if err := irq.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		log.Fatalln(err)
	}
	for irq.WaitForEdge(-1) {
		if err := dev.Dispatch(); err != nil {
			fmt.Println(err)
		}
	}
}
