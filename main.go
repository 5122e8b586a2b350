package main

import (
	cmd "github.com/cinevec/cinevec/cmd/cinevec"
	"github.com/cinevec/cinevec/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting cinevec")
	cmd.Execute()
}
