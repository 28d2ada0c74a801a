// Command rtcbridge drives the native RTC engine from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	v, err := newConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCommand(newApp(v, os.Stdout)).Execute(); err != nil {
		os.Exit(1)
	}
}
