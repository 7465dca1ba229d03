// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package servo

import (
	"time"

	"github.com/GermanBionicSystems/boron/ds1307"
)

// hold is the travel time of one move.
const hold = 3 * time.Second

// Increments are the moves of the mission. Increment 0 sets the initial
// position of all four servos, the following ones each advance one servo.
var Increments = [...][]Move{
	{
		{DriverA, Red, 80, hold},
		{DriverB, Blue, 50, hold},
		{DriverB, Red, 70, hold},
		{DriverA, Blue, 50, hold},
	},
	{{DriverA, Red, 60, hold}},
	{{DriverB, Blue, 80, hold}},
	{{DriverB, Red, 40, hold}},
	{{DriverA, Blue, 70, hold}},
}

// Thresholds is the elapsed day count at which each increment is due.
var Thresholds = [len(Increments)]int{0, 5, 10, 15, 20}

// EndDay is the elapsed day count that ends the experiment.
const EndDay = 24

// ElapsedDays returns the days between start and now, counting 30 days per
// month and ignoring the year.
func ElapsedDays(start, now ds1307.DateTime) int {
	return int(now.Day) - int(start.Day) + (int(now.Month)-int(start.Month))*30
}

// Schedule tracks which increments ran.
type Schedule struct {
	done    [len(Increments)]bool
	current int
}

// NewSchedule returns a Schedule where nothing ran yet.
func NewSchedule() *Schedule {
	return &Schedule{current: -1}
}

// Current returns the last increment that ran, -1 if none.
func (s *Schedule) Current() int {
	return s.current
}

// Due returns the increments to run after elapsed days, in order.
//
// The initial positioning only happens on a fresh start within the first
// threshold; a restart later in the mission resumes with the advances.
func (s *Schedule) Due(elapsed int) []int {
	var due []int
	if elapsed < Thresholds[1] && s.current == -1 && !s.done[0] {
		due = append(due, 0)
	}
	for i := 1; i < len(Thresholds); i++ {
		if elapsed >= Thresholds[i] && !s.done[i] {
			due = append(due, i)
		}
	}
	return due
}

// Done marks the increment n as run.
func (s *Schedule) Done(n int) {
	s.done[n] = true
	s.current = n
}

// Finished reports whether the experiment is over.
func Finished(elapsed int) bool {
	return elapsed >= EndDay
}

// Step runs every increment due after elapsed days on d and returns the ones
// that ran. It stops at the first failure, which stays due.
func (s *Schedule) Step(d *Driver, elapsed int) ([]int, error) {
	var ran []int
	for _, n := range s.Due(elapsed) {
		if err := d.Run(n); err != nil {
			return ran, err
		}
		s.Done(n)
		ran = append(ran, n)
	}
	return ran, nil
}
