// Command qc scores coffee QC records from the command line.
package main

import (
	"os"

	"github.com/ismailopm12/coffeeqc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
