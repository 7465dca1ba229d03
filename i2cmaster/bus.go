// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// String implements conn.Resource.
func (c *Controller) String() string {
	return fmt.Sprintf("i2cmaster{%s}", c.opts.Speed)
}

// Halt implements conn.Resource.
//
// It releases the bus if a transaction was left open.
func (c *Controller) Halt() error {
	if c.state == Idle || c.state == Stopped {
		return nil
	}
	return c.Stop()
}

// SetSpeed implements i2c.Bus.
func (c *Controller) SetSpeed(f physic.Frequency) error {
	if c.state != Idle && c.state != Stopped {
		return &OpError{Op: "speed", Err: ErrInvalidState}
	}
	return c.configure(f)
}

// Tx implements i2c.Bus.
//
// It writes w then reads into r with a repeated start in between, as a single
// transaction that always ends with a stop. addr is the 7 bit address.
func (c *Controller) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("i2cmaster: invalid 7 bit address %#x", addr)
	}
	if err := c.Start(); err != nil {
		return errors.Join(err, c.Stop())
	}
	err := c.tx(addr, w, r)
	if serr := c.Stop(); err == nil {
		err = serr
	}
	return err
}

func (c *Controller) tx(addr uint16, w, r []byte) error {
	if len(w) != 0 || len(r) == 0 {
		if err := c.address(addr, false); err != nil {
			return err
		}
		for i, b := range w {
			o, err := c.WriteData(b)
			if err != nil {
				return err
			}
			if o != Acknowledged {
				return &NackError{Addr: addr, Index: i}
			}
		}
		if len(r) == 0 {
			return nil
		}
		if err := c.Restart(); err != nil {
			return err
		}
	}
	if err := c.address(addr, true); err != nil {
		return err
	}
	for i := range r {
		last := i == len(r)-1
		b, err := c.ReadData(last)
		if err != nil {
			return err
		}
		r[i] = b
		c.SendAck(last)
	}
	return nil
}

func (c *Controller) address(addr uint16, read bool) error {
	b := byte(addr << 1)
	if read {
		b |= 1
	}
	o, err := c.WriteData(b)
	if err != nil {
		return err
	}
	if o != Acknowledged {
		return &NackError{Addr: addr, Index: -1}
	}
	return nil
}

var _ i2c.Bus = &Controller{}
var _ conn.Resource = &Controller{}
