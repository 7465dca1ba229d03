// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package servo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/boron/ds1307"
)

// recPin records the operations on all pins in a shared log.
type recPin struct {
	*gpiotest.Pin
	log  *[]string
	fail bool
}

func (p *recPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, fmt.Sprintf("%s=%s", p.N, l))
	return p.Pin.Out(l)
}

func (p *recPin) PWM(d gpio.Duty, f physic.Frequency) error {
	if p.fail && d != 0 {
		return errors.New("pwm failure")
	}
	*p.log = append(*p.log, fmt.Sprintf("%s=%d%%", p.N, (int64(d)*100+int64(gpio.DutyMax)/2)/int64(gpio.DutyMax)))
	return p.Pin.PWM(d, f)
}

type rig struct {
	d      *Driver
	log    []string
	sleeps []time.Duration
	pins   [4]*recPin
}

func newRig(t *testing.T) *rig {
	r := &rig{}
	for i, n := range []string{"A", "B", "R", "U"} {
		r.pins[i] = &recPin{Pin: &gpiotest.Pin{N: n}, log: &r.log}
	}
	opts := DefaultOpts
	opts.Sleep = func(d time.Duration) { r.sleeps = append(r.sleeps, d) }
	d, err := New(r.pins[0], r.pins[1], r.pins[2], r.pins[3], &opts)
	if err != nil {
		t.Fatal(err)
	}
	r.d = d
	r.log = nil
	return r
}

func TestNew(t *testing.T) {
	if _, err := New(nil, nil, nil, nil, nil); err == nil {
		t.Error("expected an error for missing pins")
	}
	r := newRig(t)
	for _, p := range r.pins[:2] {
		if p.L != gpio.Low {
			t.Errorf("power %s left on", p.N)
		}
	}
	if len(r.d.String()) == 0 {
		t.Error("invalid String() result")
	}
}

func TestActuate(t *testing.T) {
	r := newRig(t)
	if err := r.d.Actuate(Move{DriverB, Red, 70, time.Second}); err != nil {
		t.Fatal(err)
	}
	want := []string{"B=High", "R=70%", "B=Low", "R=0%"}
	if diff := cmp.Diff(want, r.log); diff != "" {
		t.Errorf("pin activity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{time.Second}, r.sleeps); diff != "" {
		t.Errorf("hold mismatch (-want +got):\n%s", diff)
	}
	if r.pins[2].F != 50*physic.Hertz {
		t.Errorf("frequency %s expected 50Hz", r.pins[2].F)
	}
}

func TestActuateInvalid(t *testing.T) {
	r := newRig(t)
	for _, m := range []Move{{Power: 2}, {Channel: 2}, {Percent: 101}, {Percent: -1}} {
		if err := r.d.Actuate(m); err == nil {
			t.Errorf("Actuate(%+v) expected an error", m)
		}
	}
	if len(r.log) != 0 {
		t.Errorf("unexpected pin activity %v", r.log)
	}
}

func TestActuateFailure(t *testing.T) {
	r := newRig(t)
	r.pins[3].fail = true
	if err := r.d.Actuate(Move{DriverA, Blue, 50, hold}); err == nil {
		t.Fatal("expected an error")
	}
	if r.pins[0].L != gpio.Low {
		t.Error("power A left on after a failure")
	}
	if len(r.sleeps) != 0 {
		t.Error("held on a failed move")
	}
}

func TestRun(t *testing.T) {
	r := newRig(t)
	if err := r.d.Run(0); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"A=High", "R=80%", "A=Low", "R=0%",
		"B=High", "U=50%", "B=Low", "U=0%",
		"B=High", "R=70%", "B=Low", "R=0%",
		"A=High", "U=50%", "A=Low", "U=0%",
	}
	if diff := cmp.Diff(want, r.log); diff != "" {
		t.Errorf("pin activity mismatch (-want +got):\n%s", diff)
	}
	if len(r.sleeps) != 4 || r.sleeps[0] != 3*time.Second {
		t.Errorf("holds %v", r.sleeps)
	}
	if err := r.d.Run(len(Increments)); err == nil {
		t.Error("expected an error for an unknown increment")
	}
}

func TestElapsedDays(t *testing.T) {
	var tests = []struct {
		start, now ds1307.DateTime
		days       int
	}{
		{ds1307.DateTime{Day: 26, Month: 5}, ds1307.DateTime{Day: 26, Month: 5}, 0},
		{ds1307.DateTime{Day: 26, Month: 5}, ds1307.DateTime{Day: 31, Month: 5}, 5},
		{ds1307.DateTime{Day: 26, Month: 5}, ds1307.DateTime{Day: 2, Month: 6}, 6},
		{ds1307.DateTime{Day: 31, Month: 1}, ds1307.DateTime{Day: 1, Month: 3}, 30},
		{ds1307.DateTime{Day: 10, Month: 5}, ds1307.DateTime{Day: 9, Month: 5}, -1},
	}
	for _, test := range tests {
		if got := ElapsedDays(test.start, test.now); got != test.days {
			t.Errorf("ElapsedDays(%d/%d, %d/%d)=%d expected %d",
				test.start.Day, test.start.Month, test.now.Day, test.now.Month, got, test.days)
		}
	}
}

func TestSchedule(t *testing.T) {
	s := NewSchedule()
	if s.Current() != -1 {
		t.Fatalf("current %d expected -1", s.Current())
	}
	var tests = []struct {
		elapsed int
		due     []int
	}{
		{0, []int{0}},
		{4, nil},
		{5, []int{1}},
		{9, nil},
		{16, []int{2, 3}},
		{22, []int{4}},
		{30, nil},
	}
	for _, test := range tests {
		due := s.Due(test.elapsed)
		if diff := cmp.Diff(test.due, due); diff != "" {
			t.Errorf("day %d (-want +got):\n%s", test.elapsed, diff)
		}
		for _, n := range due {
			s.Done(n)
		}
	}
	if s.Current() != 4 {
		t.Errorf("current %d expected 4", s.Current())
	}
}

func TestScheduleLateStart(t *testing.T) {
	s := NewSchedule()
	if diff := cmp.Diff([]int{1, 2}, s.Due(12)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestStep(t *testing.T) {
	r := newRig(t)
	s := NewSchedule()
	ran, err := s.Step(r.d, 10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2}, ran); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	r.pins[2].fail = true
	ran, err = s.Step(r.d, 15)
	if err == nil || len(ran) != 0 {
		t.Fatalf("expected a failure, ran %v", ran)
	}
	if s.Current() != 2 {
		t.Errorf("current %d expected 2", s.Current())
	}
	if diff := cmp.Diff([]int{3}, s.Due(15)); diff != "" {
		t.Errorf("failed increment not due anymore (-want +got):\n%s", diff)
	}
}

func TestFinished(t *testing.T) {
	if Finished(EndDay - 1) {
		t.Error("finished early")
	}
	if !Finished(EndDay) {
		t.Error("not finished")
	}
}
