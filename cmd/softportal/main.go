// Command softportal emulates a toy-figurine portal on a FIFO bus.
//
// Usage:
//
//	softportal run [--bus-dir dir] [--insert 0,1]
//	softportal send <bus-dir> <hex>
//	softportal toy init <slot>
//	softportal toy dump <slot>
//	softportal toy list
//	softportal describe
//
// Global flags select the configuration file (TOML or YAML), the .env file
// supplying SOFTPORTAL_* overrides, and the log level and format.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
