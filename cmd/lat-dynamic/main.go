// Command lat-dynamic runs one sparse convolution layer across a mesh of
// tiles that steal work from each other, and reports how it went.
package main

import "os"

func main() { os.Exit(run(os.Args[1:], os.Stdout)) }
