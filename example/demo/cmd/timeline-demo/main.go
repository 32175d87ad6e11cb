// Command timeline-demo runs a small ping scenario through an instrumented pub/sub setup and
// shows the recorded timeline, either printed (run) or served over HTTP (serve).
package main

func main() {
	Execute()
}
