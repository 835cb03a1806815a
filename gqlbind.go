package main

import (
	"github.com/gqlbind/gqlbind/cmd"
	"github.com/gqlbind/gqlbind/pkg/env"
	"github.com/gqlbind/gqlbind/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("gqlbind failure", "error", err)
	}
}
