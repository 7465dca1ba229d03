// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1307_test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/boron/ds1307"
	"github.com/GermanBionicSystems/boron/i2cmaster"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	hw, err := i2cmaster.NewGPIO(gpioreg.ByName("GPIO3"), gpioreg.ByName("GPIO2"), 0)
	if err != nil {
		log.Fatal(err)
	}
	bus, err := i2cmaster.New(hw, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Halt()

	rtc := ds1307.New(bus, nil)
	dt, err := rtc.GetTime()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("time:", dt)
}
