package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/seeg/onehcm/cmd"
)

func main() {
	// A missing .env file is fine; the process environment is used as is.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
