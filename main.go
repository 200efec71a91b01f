// SPDX-License-Identifier: MPL-2.0

package main

import cmd "extbuild/cmd/extbuild"

func main() {
	cmd.Execute()
}
