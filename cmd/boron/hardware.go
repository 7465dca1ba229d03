// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/boron/ds1307"
	"github.com/GermanBionicSystems/boron/geiger"
	"github.com/GermanBionicSystems/boron/i2cmaster"
	"github.com/GermanBionicSystems/boron/servo"
	"github.com/GermanBionicSystems/boron/store"
)

func pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no pin %q", name)
	}
	return p, nil
}

// openRTC initializes the host and returns the clock on the bit-banged bus.
func openRTC() (*ds1307.Dev, *i2cmaster.Controller, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	var speed physic.Frequency
	if err := speed.Set(opts.speed); err != nil {
		return nil, nil, fmt.Errorf("--speed: %w", err)
	}
	scl, err := pin(opts.scl)
	if err != nil {
		return nil, nil, err
	}
	sda, err := pin(opts.sda)
	if err != nil {
		return nil, nil, err
	}
	hw, err := i2cmaster.NewGPIO(scl, sda, 0)
	if err != nil {
		return nil, nil, err
	}
	o := i2cmaster.DefaultOpts
	o.Speed = speed
	bus, err := i2cmaster.New(hw, &o)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("bus", bus).Debug("bus ready")
	return ds1307.New(bus, nil), bus, nil
}

func openServos() (*servo.Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	var pins [4]gpio.PinIO
	for i, n := range []string{opts.powerA, opts.powerB, opts.red, opts.blue} {
		p, err := pin(n)
		if err != nil {
			return nil, err
		}
		pins[i] = p
	}
	return servo.New(pins[0], pins[1], pins[2], pins[3], nil)
}

// openGeiger returns the counter and the port to close.
func openGeiger() (*geiger.Counter, *serial.Port, error) {
	port, err := serial.OpenPort(&serial.Config{Name: opts.uart, Baud: opts.baud})
	if err != nil {
		return nil, nil, fmt.Errorf("serial.OpenPort(%v): %w", opts.uart, err)
	}
	c, err := geiger.New(port, &geiger.Opts{Window: opts.window})
	if err != nil {
		return nil, nil, errors.Join(err, port.Close())
	}
	return c, port, nil
}

// openStore returns the Redis store when --redis is set, the directory store
// otherwise, copying every write to the MQTT broker when --mqtt is set. The
// returned function releases it.
func openStore(ctx context.Context) (store.Store, func() error, error) {
	var st store.Store
	closers := []func() error{}
	if opts.redis != "" {
		r, err := store.NewRedis(ctx, opts.redis, opts.prefix)
		if err != nil {
			return nil, nil, err
		}
		st = r
		closers = append(closers, r.Close)
	} else {
		d, err := store.NewDir(opts.dir)
		if err != nil {
			return nil, nil, err
		}
		st = d
	}
	if opts.mqtt != "" {
		m, err := store.NewMQTT(opts.mqtt)
		if err != nil {
			return nil, nil, errors.Join(err, closeAll(closers))
		}
		log.WithField("prefix", m.Prefix).Debug("publishing to mqtt")
		st = store.Tee(st, m)
		closers = append(closers, m.Close)
	}
	return st, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
