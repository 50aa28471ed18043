// Command geoutils runs the geoutils command-line interface.
package main

import "github.com/mjb-oz/geoutils/internal/cli"

func main() {
	cli.Execute()
}
