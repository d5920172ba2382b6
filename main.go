package main

import (
	"github.com/rackprobe/raritan-pdu-exporter/cmd"
)

func main() {
	cmd.Execute()
}
