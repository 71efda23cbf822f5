package minimap

import (
	"image"
	"time"
)

const (
	MaxPerSide = 5
	ImageSize  = 224

	MapMin = -1000.0
	MapMax = 15000.0

	TeamAlly = 100
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VisionMask is a row-major fog-of-war mask, 1 meaning visible.
type VisionMask struct {
	Width  int
	Height int
	Data   []uint8
}

func (m *VisionMask) Visible(x, y int) bool {
	if m == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Data[y*m.Width+x] != 0
}

var fullVision = newFullVisionMask(ImageSize, ImageSize)

func newFullVisionMask(w, h int) *VisionMask {
	data := make([]uint8, w*h)
	for i := range data {
		data[i] = 1
	}
	return &VisionMask{Width: w, Height: h, Data: data}
}

// FullVision returns the shared all-visible mask. Callers must not modify it.
func FullVision() *VisionMask {
	return fullVision
}

// Frame is one synchronized tick of telemetry and minimap imagery.
type Frame struct {
	Timestamp  time.Time
	GameTime   float64
	Allies     []Point
	Enemies    []Point
	Objectives map[string]Point
	Vision     *VisionMask
	Image      image.Image
}

var objectiveLocations = map[string]Point{
	"dragon": {X: 0.3, Y: 0.8},
	"baron":  {X: 0.9, Y: 0.2},
}

func ObjectiveLocations() map[string]Point {
	out := make(map[string]Point, len(objectiveLocations))
	for k, v := range objectiveLocations {
		out[k] = v
	}
	return out
}
