// ./main.go
package main

import (
	"github.com/xkilldash9x/deskpilot/cmd"
)

func main() {
	cmd.Execute()
}
