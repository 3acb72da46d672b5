package main

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/water-safety-service/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "watersafe:", err)
		os.Exit(1)
	}
}
