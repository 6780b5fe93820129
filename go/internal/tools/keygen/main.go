package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mcdev12/courtclock/go/internal/entitlement"
)

// keygen prints the activation key for one or more device identifiers.
func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: keygen DEVICE_ID [DEVICE_ID...]\n")
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	for _, id := range flag.Args() {
		fmt.Printf("%s\t%s\n", id, entitlement.FormatKey(entitlement.ExpectedKey(id)))
	}
}
