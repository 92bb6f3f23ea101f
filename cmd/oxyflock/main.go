// Command oxyflock runs the flocking simulation and sends its frames to a window, a websocket
// stream or PNG snapshots.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
