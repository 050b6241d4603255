// Command gridagent-policy-info reports the action histogram of a
// trained .policy file, a quick sanity check of the persistence
// round-trip (spec testable property 8): every persisted policy should
// load back with the same length and a plausible action distribution.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() != 1 {
		return fmt.Errorf("usage: gridagent-policy-info <policy path>")
	}

	table, err := policytable.Load(flag.Arg(0))
	if err != nil {
		return err
	}

	var counts [int(geometry.NumActions)]int
	for k := 0; k < table.Len(); k++ {
		a := table.Get(k)
		if int(a) < len(counts) {
			counts[a]++
		}
	}

	fmt.Printf("policy length: %d\n", table.Len())
	for _, a := range geometry.Actions {
		pct := 100 * float64(counts[a]) / float64(table.Len())
		fmt.Printf("%-7s %8d (%.1f%%)\n", a, counts[a], pct)
	}
	return nil
}
