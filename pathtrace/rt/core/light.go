package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightKind int

const (
	LightPoint LightKind = iota
	LightDirectional
)

func (k LightKind) String() string {
	switch k {
	case LightPoint:
		return "point"
	case LightDirectional:
		return "directional"
	}
	return "unknown"
}

// Light is either a point light at Position or a directional light shining along Direction.
type Light struct {
	Kind      LightKind
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Strength  mgl32.Vec3
}

func NewPointLight(position, strength mgl32.Vec3) Light {
	return Light{Kind: LightPoint, Position: position, Strength: strength}
}

func NewDirectionalLight(direction, strength mgl32.Vec3) Light {
	return Light{Kind: LightDirectional, Direction: direction.Normalize(), Strength: strength}
}
