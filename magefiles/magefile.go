//go:build mage

// Package main provides build targets for the geoutils project using Mage.
//
// Usage:
//
//	mage build           Compile geoutils binary to bin/
//	mage test            Run all tests
//	mage testSpatialite  Run database tests with cgo so Spatialite can load
//	mage lint            Run golangci-lint
//	mage clean           Remove build artifacts
//	mage install         Install geoutils to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "geoutils"
	binaryDir  = "bin"
	cmdDir     = "./cmd/geoutils"
)

// spatialPkgs hold the tests that exercise the Spatialite driver.
var spatialPkgs = []string{"./internal/spatialdb/...", "./internal/loader/..."}

// Build compiles the geoutils binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestSpatialite runs the database tests with cgo enabled. Tests that need
// mod_spatialite skip when the library is not on the loader path.
func TestSpatialite() error {
	args := append([]string{"test", "-v", "-run", "Spatialite"}, spatialPkgs...)
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, binGo, args...)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
