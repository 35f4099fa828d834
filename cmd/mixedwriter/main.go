// mixedwriter emits a fixed alternation of stdout and stderr lines. Run it
// through ocatch to inspect how faithfully each strategy reconstructs the
// interleaving: the smaller the delay, the more the separate strategy's
// merged order drifts from reality.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	iterations := flag.Int("iterations", 2000, "number of alternation rounds")
	delay := flag.Duration("delay", 150*time.Microsecond, "pause between lines")
	flag.Parse()

	for i := 0; i < *iterations; i++ {
		fmt.Printf("STDOUT 01/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Fprintf(os.Stderr, "STDERR 02/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Printf("STDOUT 03/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Fprintf(os.Stderr, "STDERR 04/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Printf("STDOUT 05/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Printf("STDOUT 06/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Printf("STDOUT 07/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Fprintf(os.Stderr, "STDERR 08/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Fprintf(os.Stderr, "STDERR 09/10 @ %4d\n", i)
		time.Sleep(*delay)
		fmt.Fprintf(os.Stderr, "STDERR 10/10 @ %4d\n", i)
		time.Sleep(*delay)
	}
}
