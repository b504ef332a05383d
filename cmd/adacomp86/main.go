// Command adacomp86 compiles the procedural language described in
// spec §1 down to 16-bit 8086 assembly for MASM/TASM.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/adacomp86/cmd/adacomp86/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
