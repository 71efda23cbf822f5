package main

import "github.com/eleven-am/live-coach/internal/bootstrap"

func main() {
	bootstrap.RunSidecar()
}
