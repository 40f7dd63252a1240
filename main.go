package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
