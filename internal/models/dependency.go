package models

import (
	"fmt"
	"strings"
)

// Op is a version comparison operator of a dependency constraint.
type Op string

const (
	OpAny          Op = ""
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpEqual        Op = "="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
)

// Dependency is a package relation entry: a name with an optional
// version constraint. Version is empty iff Op is OpAny.
type Dependency struct {
	Name    string `yaml:"name"`
	Op      Op     `yaml:"op,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// Any returns an unconstrained dependency on name.
func Any(name string) Dependency {
	return Dependency{Name: name}
}

func parseOp(s string) (Op, bool) {
	switch op := Op(s); op {
	case OpLess, OpLessEqual, OpEqual, OpGreater, OpGreaterEqual:
		return op, true
	}
	return OpAny, false
}

// ParseConstraint parses the value side of a relation table entry:
// "*" or "" for any version, or "<op> <version>".
func ParseConstraint(name, constraint string) (Dependency, error) {
	fields := strings.Fields(constraint)
	switch len(fields) {
	case 0:
		return Any(name), nil
	case 1:
		if fields[0] == "*" {
			return Any(name), nil
		}
	case 2:
		if op, ok := parseOp(fields[0]); ok {
			return Dependency{Name: name, Op: op, Version: fields[1]}, nil
		}
	}
	return Dependency{}, fmt.Errorf("%w: %s = %q", ErrInvalidVersionConstraint, name, constraint)
}

// ParseDependency parses the textual form produced by Dependency.String.
func ParseDependency(s string) (Dependency, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	if name == "" {
		return Dependency{}, fmt.Errorf("%w: empty dependency", ErrInvalidVersionConstraint)
	}
	return ParseConstraint(name, rest)
}

// Constraint renders the value side: "*" or "<op> <version>".
func (d Dependency) Constraint() string {
	if d.Op == OpAny {
		return "*"
	}
	return string(d.Op) + " " + d.Version
}

func (d Dependency) String() string {
	if d.Op == OpAny {
		return d.Name
	}
	return d.Name + " " + string(d.Op) + " " + d.Version
}

// Sense returns the RPMSENSE comparison bits for the operator.
func (d Dependency) Sense() uint32 {
	const (
		senseLess    = 0x02
		senseGreater = 0x04
		senseEqual   = 0x08
	)
	switch d.Op {
	case OpLess:
		return senseLess
	case OpLessEqual:
		return senseLess | senseEqual
	case OpEqual:
		return senseEqual
	case OpGreater:
		return senseGreater
	case OpGreaterEqual:
		return senseGreater | senseEqual
	}
	return 0
}
