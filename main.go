// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/ccbuild/cmd/ccbuild"

func main() {
	cmd.Execute()
}
