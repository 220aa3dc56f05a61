package main

import (
	"os"

	"github.com/luhtfiimanal/go-ringfile/internal/command"
)

func main() {
	os.Exit(command.Execute())
}
