// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package servo moves the sample arms of the experiment.
//
// Four hobby servos share two PWM channels and two power drivers; a servo
// moves only when both its power driver is on and its channel carries a
// pulse. A move powers one driver, sets the channel duty, holds while the
// servo travels then powers it down.
package servo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Power selects a power driver.
type Power uint8

const (
	DriverA Power = iota
	DriverB
)

func (p Power) String() string {
	if p == DriverA {
		return "A"
	}
	return "B"
}

// Channel selects a PWM channel.
type Channel uint8

const (
	Red Channel = iota
	Blue
)

func (c Channel) String() string {
	if c == Red {
		return "Red"
	}
	return "Blue"
}

// Move is one servo movement.
type Move struct {
	Power   Power
	Channel Channel
	// Percent is the PWM duty cycle, 0-100.
	Percent int
	Hold    time.Duration
}

// Opts holds the driver options.
type Opts struct {
	// Frequency is the servo pulse rate.
	Frequency physic.Frequency
	// Sleep waits for the servo to travel. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Frequency: 50 * physic.Hertz,
	Sleep:     time.Sleep,
}

// Driver drives the power and PWM pins.
type Driver struct {
	mu    sync.Mutex
	power [2]gpio.PinOut
	pwm   [2]gpio.PinOut
	freq  physic.Frequency
	sleep func(time.Duration)
}

// New returns a Driver. Both power drivers are turned off.
func New(powerA, powerB, red, blue gpio.PinOut, opts *Opts) (*Driver, error) {
	if powerA == nil || powerB == nil || red == nil || blue == nil {
		return nil, errors.New("servo: all four pins are required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Driver{
		power: [2]gpio.PinOut{powerA, powerB},
		pwm:   [2]gpio.PinOut{red, blue},
		freq:  opts.Frequency,
		sleep: opts.Sleep,
	}
	if d.freq <= 0 {
		d.freq = DefaultOpts.Frequency
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	return d, d.Halt()
}

func (d *Driver) String() string {
	return fmt.Sprintf("servo{%s, %s, %s, %s}", d.power[0], d.power[1], d.pwm[0], d.pwm[1])
}

// Halt implements conn.Resource. It powers down both drivers and stops the
// pulses.
func (d *Driver) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for _, p := range d.power {
		errs = append(errs, p.Out(gpio.Low))
	}
	for _, p := range d.pwm {
		errs = append(errs, p.PWM(0, d.freq))
	}
	return errors.Join(errs...)
}

// Actuate runs m. The power driver is turned off after the hold even when
// setting the duty failed.
func (d *Driver) Actuate(m Move) error {
	if m.Power > DriverB || m.Channel > Blue {
		return fmt.Errorf("servo: invalid move %+v", m)
	}
	if m.Percent < 0 || m.Percent > 100 {
		return fmt.Errorf("servo: duty %d%% out of range", m.Percent)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	power, pwm := d.power[m.Power], d.pwm[m.Channel]
	if err := power.Out(gpio.High); err != nil {
		return fmt.Errorf("servo: power %s: %w", m.Power, err)
	}
	err := pwm.PWM(gpio.Duty(int64(gpio.DutyMax)*int64(m.Percent)/100), d.freq)
	if err == nil {
		d.sleep(m.Hold)
	}
	return errors.Join(err, power.Out(gpio.Low), pwm.PWM(0, d.freq))
}

// Run actuates every move of the increment n.
func (d *Driver) Run(n int) error {
	if n < 0 || n >= len(Increments) {
		return fmt.Errorf("servo: no increment %d", n)
	}
	for _, m := range Increments[n] {
		if err := d.Actuate(m); err != nil {
			return fmt.Errorf("servo: increment %d: %w", n, err)
		}
	}
	return nil
}
