package main

import (
	"github.com/mj1618/devicepilot/cmd"

	_ "github.com/mj1618/devicepilot/internal/platform/adb"
)

func main() {
	cmd.Execute()
}
