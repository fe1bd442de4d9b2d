// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMethod is returned
// when a UniFrac method is not recognized.
var ErrUnknownMethod = errors.New("unknown unifrac method")

// Method is a UniFrac variant.
type Method int

// Valid UniFrac methods.
const (
	// Unweighted UniFrac,
	// using only the presence of the features.
	Unweighted Method = iota

	// WeightedUnnormalized is the weighted UniFrac
	// without normalization.
	WeightedUnnormalized

	// WeightedNormalized is the weighted UniFrac
	// normalized to the [0, 1] range.
	WeightedNormalized

	// Generalized UniFrac,
	// with an alpha exponent.
	Generalized
)

var methodNames = []string{
	Unweighted:           "unweighted",
	WeightedUnnormalized: "weighted_unnormalized",
	WeightedNormalized:   "weighted_normalized",
	Generalized:          "generalized",
}

// Methods returns the names of the valid methods.
func Methods() []string {
	ls := make([]string, len(methodNames))
	copy(ls, methodNames)
	return ls
}

// ParseMethod returns the method
// with the indicated name.
func ParseMethod(name string) (Method, error) {
	name = strings.Join(strings.Fields(strings.ToLower(name)), "_")
	name = strings.ReplaceAll(name, "-", "_")
	for m, n := range methodNames {
		if n == name {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Bounded returns true if the distances of the method
// are always in the [0, 1] range.
func (m Method) Bounded() bool {
	return m != WeightedUnnormalized
}
