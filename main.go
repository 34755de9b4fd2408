// SPDX-License-Identifier: MPL-2.0

package main

import cmd "wotmodpack/cmd/wotmodpack"

func main() {
	cmd.Execute()
}
