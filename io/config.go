/*Package io handles simulation setup files and surface dumps.*/
package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/granular-dem/spherharm/contact"
)

const ExampleSetupFile = `[Quadrature]

# Order of the Gauss-Legendre rule used for the property integrals over
# each shape. The same order is used in theta and phi.
Order = 100

#######################
# Optional Parameters #
#######################

# Number of quadrature rings across the contact cap. Default is 30.
# PoleOrder = 30

# Bisection stopping width as a fraction of the larger maximum radius.
# Default is 1e-3.
# RadiusTol = 1e-3

[Contact]

# Normal stiffness and volume exponent of the contact law
# F = -Exponent * Stiffness * vol^(Exponent - 1) * S.
Stiffness = 1e5
Exponent = 1.5

# One section per particle type. The file holds "n m re im" rows; rows
# with m < 0 are skipped, degrees past MaxDegree truncate reading.
[Shape "ellipsoid"]
File = shapes/ellipsoid.dat
MaxDegree = 20`

type QuadratureConfig struct {
	Order     int
	PoleOrder int
	RadiusTol float64
}

func (q *QuadratureConfig) CheckInit() error {
	if q.Order <= 0 {
		return fmt.Errorf("Need to specify a positive Quadrature Order.")
	}
	if q.PoleOrder == 0 {
		q.PoleOrder = contact.DefaultPoleOrder
	} else if q.PoleOrder < 0 {
		return fmt.Errorf("PoleOrder must be positive, but is %d.", q.PoleOrder)
	}
	if q.RadiusTol == 0 {
		q.RadiusTol = contact.DefaultRadiusTol
	} else if q.RadiusTol < 0 || q.RadiusTol >= 1 {
		return fmt.Errorf(
			"RadiusTol must be in range (0, 1), but is %g.", q.RadiusTol,
		)
	}
	return nil
}

type ContactConfig struct {
	Stiffness float64
	Exponent  float64
}

func (c *ContactConfig) CheckInit() error {
	if c.Stiffness <= 0 {
		return fmt.Errorf("Need to specify a positive Contact Stiffness.")
	}
	if c.Exponent <= 1 {
		return fmt.Errorf(
			"Contact Exponent must be greater than 1, but is %g.", c.Exponent,
		)
	}
	return nil
}

type ShapeConfig struct {
	// Required
	File string

	// Optional
	MaxDegree int

	// Set from the section header.
	Name string
}

func (s *ShapeConfig) CheckInit(name string) error {
	if s.File == "" {
		return fmt.Errorf("Need to specify a File for Shape '%s'.", name)
	}
	if s.MaxDegree == 0 {
		s.MaxDegree = 20
	} else if s.MaxDegree < 0 {
		return fmt.Errorf(
			"MaxDegree of Shape '%s' must be positive, but is %d.",
			name, s.MaxDegree,
		)
	}
	s.Name = name
	return nil
}

type SetupConfig struct {
	Quadrature QuadratureConfig
	Contact    ContactConfig
	Shape      map[string]*ShapeConfig
}

// ReadSetupConfig parses and validates a setup file, filling defaults
// for the optional parameters.
func ReadSetupConfig(fname string) (*SetupConfig, error) {
	cfg := &SetupConfig{}
	if err := gcfg.ReadFileInto(cfg, fname); err != nil {
		return nil, err
	}
	if err := cfg.Quadrature.CheckInit(); err != nil {
		return nil, err
	}
	if err := cfg.Contact.CheckInit(); err != nil {
		return nil, err
	}
	if len(cfg.Shape) == 0 {
		return nil, fmt.Errorf("Need at least one Shape section in '%s'.", fname)
	}
	for name, s := range cfg.Shape {
		if err := s.CheckInit(name); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
