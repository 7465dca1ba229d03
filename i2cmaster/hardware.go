// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Control is the set of bits of the peripheral control register that the
// master uses.
type Control uint16

const (
	// StartBit initiates a start condition. Cleared by hardware when done.
	StartBit Control = 1 << iota
	// RestartBit initiates a repeated start condition. Cleared by hardware.
	RestartBit
	// StopBit initiates a stop condition. Cleared by hardware.
	StopBit
	// ReceiveBit enables reception of one byte. Cleared by hardware once the
	// byte is in the receive buffer.
	ReceiveBit
	// AckBit initiates the acknowledge sequence. Cleared by hardware.
	AckBit
	// AckDataBit is the value sent during the acknowledge sequence: set for
	// NACK, clear for ACK.
	AckDataBit
)

// Status is the set of bits of the peripheral status register that the master
// inspects.
type Status uint16

const (
	// TransmitFull is set while a byte is being shifted out.
	TransmitFull Status = 1 << iota
	// WriteCollision is set when a write to the transmit buffer could not be
	// carried out because the bus was not ready or was lost.
	WriteCollision
	// AckStat holds the acknowledge received from the slave: set on NACK.
	AckStat
	// Overflow is set when a byte was received while the previous one was
	// still unread.
	Overflow
	// ReceiveFull is set while the receive buffer holds an unread byte.
	ReceiveFull
)

// Hardware is the register level view of an I²C master peripheral.
//
// Sequences started with SetControl complete asynchronously: the hardware
// clears the corresponding bit and raises the pending flag when done.
type Hardware interface {
	// Configure enables the peripheral with the given baud rate generator
	// reload value.
	Configure(brg uint16) error
	Control() Control
	SetControl(c Control)
	ClearControl(c Control)
	Status() Status
	ClearStatus(s Status)
	// Transmit loads the transmit buffer, starting the shift out of b.
	Transmit(b byte)
	// Receive returns the content of the receive buffer.
	Receive() byte
	// Pending reports the master interrupt flag.
	Pending() bool
	ClearPending()
}

// BaudDivisor returns the baud rate generator reload value for the requested
// SCL frequency given the instruction clock, including the 100ns pulse
// gobbler delay of the peripheral.
func BaudDivisor(clock, speed physic.Frequency) (uint16, error) {
	fcy := int64(clock / physic.Hertz)
	fscl := int64(speed / physic.Hertz)
	if fcy <= 0 || fscl <= 0 {
		return 0, fmt.Errorf("i2cmaster: invalid clock %s or speed %s", clock, speed)
	}
	brg := fcy/fscl - fcy/10000000 - 1
	if brg < 2 || brg > 0xFFFF {
		return 0, fmt.Errorf("i2cmaster: speed %s not reachable from clock %s", speed, clock)
	}
	return uint16(brg), nil
}
