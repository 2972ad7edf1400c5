// cmd/genhash prints a bcrypt hash for the password given as first argument.
// Usage: go run ./cmd/genhash <password>
package main

import (
	"fmt"
	"os"

	"cellfie/internal/service"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(h)
}
