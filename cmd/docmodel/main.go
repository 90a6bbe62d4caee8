package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/sanskrit-coders/docmodel/internal/cli"
)

func main() {
	env := cli.Env{Stdout: os.Stdout, Stderr: os.Stderr}
	if err := cli.Main(context.Background(), os.Args[1:], env); err != nil {
		if errors.Is(err, cli.ErrInvalid) {
			os.Exit(1)
		}
		log.Fatal(err)
	}
}
