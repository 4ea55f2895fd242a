package service_test

import (
	"io"
	"log"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
