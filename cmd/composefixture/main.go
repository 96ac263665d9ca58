package main

import (
	"os"

	"github.com/schmitthub/composefixture/internal/composefixture"
)

func main() {
	os.Exit(composefixture.Main())
}
