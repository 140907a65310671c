// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/classicalliu/cita-common/cmd/citaci"

func main() {
	cmd.Execute()
}
