// Command wikindex indexes a wiki page hierarchy from the command line and
// looks pages up in the stored index.
package main

func main() {
	execute()
}
