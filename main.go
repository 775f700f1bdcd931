package main

import (
	"log"

	"github.com/thiagokokada/gitstatus-go/cmd"
)

func main() {
	log.SetFlags(0)
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitstatus: %v", err)
	}
}
