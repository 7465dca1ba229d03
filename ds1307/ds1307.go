// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1307

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"

	"github.com/GermanBionicSystems/boron/i2cmaster"
)

const (
	// WriteAddr is the address byte that selects the clock for writing.
	WriteAddr byte = 0xD0
	// ReadAddr is the address byte that selects the clock for reading.
	ReadAddr byte = 0xD1

	// regSeconds is the first of the time keeping registers.
	regSeconds   byte = 0x00
	numRegisters      = 7

	// Hour register mode bits.
	hour12 byte = 0x40
	hourPM byte = 0x20
)

// Master is the set of bus primitives the driver needs.
// *i2cmaster.Controller implements it.
type Master interface {
	Start() error
	Restart() error
	WriteData(b byte) (i2cmaster.Outcome, error)
	SendAck(nack bool)
	ReadData(last bool) (byte, error)
	Stop() error
}

// Opts holds the driver options.
type Opts struct {
	// Sleep waits between protocol steps. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Sleep: time.Sleep,
}

// Dev is a handle to a DS1307 real-time clock.
type Dev struct {
	mu    sync.Mutex
	m     Master
	sleep func(time.Duration)
}

// New returns a handle to a DS1307 clock on the bus driven by m.
func New(m Master, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{m: m, sleep: opts.Sleep}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("ds1307{%v}", d.m)
}

// Halt implements conn.Resource. The clock keeps running on its own, there
// is nothing to stop.
func (d *Dev) Halt() error {
	return nil
}

// GetTime reads the seven time keeping registers in one transaction.
func (d *Dev) GetTime() (DateTime, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var raw [numRegisters]byte
	err := d.transaction("read", func() error {
		d.sleep(5 * time.Microsecond)
		if err := d.write("address", WriteAddr, true); err != nil {
			return err
		}
		d.sleep(2 * time.Microsecond)
		if err := d.write("pointer", regSeconds, true); err != nil {
			return err
		}
		d.sleep(5 * time.Microsecond)
		if err := d.m.Restart(); err != nil {
			return &BusFailureError{Op: "restart", Err: err}
		}
		d.sleep(5 * time.Microsecond)
		if err := d.write("address", ReadAddr, true); err != nil {
			return err
		}
		d.sleep(5 * time.Microsecond)
		for i := range raw {
			last := i == len(raw)-1
			b, err := d.m.ReadData(last)
			if err != nil {
				return &BusFailureError{Op: "read", Err: err}
			}
			raw[i] = b
			d.sleep(time.Microsecond)
			d.m.SendAck(last)
			d.sleep(5 * time.Microsecond)
		}
		return nil
	})
	if err != nil {
		return DateTime{}, err
	}
	return decode(raw)
}

// SetTime writes dt to the clock. dt is validated before any bus traffic.
//
// Writing the seconds register also clears the clock halt bit, which starts
// the oscillator of a new device.
func (d *Dev) SetTime(dt DateTime) error {
	if err := dt.Validate(); err != nil {
		return err
	}
	raw := dt.encode()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transaction("write", func() error {
		d.sleep(5 * time.Microsecond)
		if err := d.write("address", WriteAddr, true); err != nil {
			return err
		}
		d.sleep(2 * time.Microsecond)
		if err := d.write("pointer", regSeconds, true); err != nil {
			return err
		}
		d.sleep(5 * time.Microsecond)
		for _, b := range raw {
			// The device acks every register; a read back verifies content.
			if err := d.write("data", b, false); err != nil {
				return err
			}
			d.sleep(5 * time.Microsecond)
		}
		return nil
	})
}

// Now returns the current time of the clock.
func (d *Dev) Now() (time.Time, error) {
	dt, err := d.GetTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(), nil
}

// Set sets the clock to t, truncated to the second.
func (d *Dev) Set(t time.Time) error {
	dt, err := FromTime(t)
	if err != nil {
		return err
	}
	return d.SetTime(dt)
}

// transaction runs fn between a start and exactly one stop, including when
// the start itself fails.
func (d *Dev) transaction(op string, fn func() error) error {
	if err := d.m.Start(); err != nil {
		return errors.Join(&BusFailureError{Op: "start", Err: err}, d.m.Stop())
	}
	err := fn()
	if serr := d.m.Stop(); serr != nil && err == nil {
		err = &BusFailureError{Op: op + " stop", Err: serr}
	}
	return err
}

// write sends b. When ack is set a NACK aborts with ErrNoResponse.
func (d *Dev) write(what string, b byte, ack bool) error {
	o, err := d.m.WriteData(b)
	if err != nil {
		return &BusFailureError{Op: what, Err: err}
	}
	if ack && o != i2cmaster.Acknowledged {
		return fmt.Errorf("ds1307: %s %#02x not acknowledged: %w", what, b, ErrNoResponse)
	}
	return nil
}

var _ conn.Resource = &Dev{}
var _ Master = &i2cmaster.Controller{}
