// Command partsync runs the offline-first sync agent for the parts storefront.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alghazaly/partsync/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envFile is read from the working directory when present.
const envFile = ".env"

func main() {
	os.Exit(run())
}

func run() int {
	a, err := newApp(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	cli.SetVersion(version)
	cli.SetServices(a.services())

	if err := cli.Execute(context.Background()); err != nil {
		return 1
	}
	return 0
}
