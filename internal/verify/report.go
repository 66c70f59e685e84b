// Package verify holds the rule and smoke checks run by jitsu-verify.
package verify

import (
	"fmt"
	"io"
)

// Check is the outcome of one verification step.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Report collects checks in the order they ran.
type Report struct {
	Checks []Check
}

func (r *Report) pass(name, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: true, Detail: detail})
}

func (r *Report) fail(name string, err error) {
	r.Checks = append(r.Checks, Check{Name: name, Detail: err.Error()})
}

func (r *Report) add(name string, ok bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: ok, Detail: detail})
}

// Failed returns the number of failed checks.
func (r Report) Failed() int {
	n := 0
	for _, c := range r.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// Print writes one [PASS] or [FAIL] line per check.
func (r Report) Print(w io.Writer) {
	for _, c := range r.Checks {
		tag := "[PASS]"
		if !c.Passed {
			tag = "[FAIL]"
		}
		if c.Detail == "" {
			fmt.Fprintf(w, "%s %s\n", tag, c.Name)
			continue
		}
		fmt.Fprintf(w, "%s %s (%s)\n", tag, c.Name, c.Detail)
	}
}

// Err returns ErrChecksFailed when any check failed.
func (r Report) Err() error {
	if n := r.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, n, len(r.Checks))
	}
	return nil
}
