// Command protoskema loads a reflected schema and converts messages between
// their JSON form and the tag/varint wire format.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
