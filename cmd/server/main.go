package main

import (
	_ "github.com/eleven-am/live-coach/docs"
	"github.com/eleven-am/live-coach/internal/bootstrap"
)

// @title Live Coach API
// @version 1.0.0
// @description Real-time minimap analysis and coach calls

// @host localhost:8080
// @BasePath /v1

func main() {
	bootstrap.Run()
}
