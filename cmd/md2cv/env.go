package main

import (
	"io"
	"os"
	"time"

	md2cv "github.com/alnah/go-md2cv"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	NewEngine func(opts ...md2cv.Option) (*md2cv.Engine, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewEngine: md2cv.NewEngine,
	}
}
