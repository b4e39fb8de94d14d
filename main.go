package main

import (
	"github.com/kiwicloudninja/arnexport/cmd"
)

func main() {
	cmd.Execute()
}
