// sema compiles S-expression programs into bit-addressable binary
// artifacts and runs an interactive REPL.
package main

import "github.com/dr8co/sema/cmd"

func main() {
	cmd.Execute()
}
