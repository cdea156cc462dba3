// Command pm25scope serves the PM2.5 dashboard and runs its analyses from
// the command line.
package main

func main() {
	Execute()
}
