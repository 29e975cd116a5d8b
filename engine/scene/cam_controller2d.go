package scene

import "github.com/hubastard/marquee/engine/core"

// OrthoController2D: WASD move, Q/R rotate, scroll zooms.
type OrthoController2D struct {
	MoveSpeed float32 // world units per second
	RotSpeed  float32 // radians per second
	ZoomSpeed float32 // zoom factor per scroll step
	Camera    *OrthoCamera2D
}

func NewOrthoController2D(cam *OrthoCamera2D) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 200,
		RotSpeed:  2.0,
		ZoomSpeed: 1.2,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(in *core.Input, dt float32) {
	speed := cc.MoveSpeed * dt / cc.Camera.Zoom
	rot := cc.RotSpeed * dt

	if in.IsKeyDown(core.KeyW) {
		cc.Camera.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyS) {
		cc.Camera.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyA) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cc.Camera.Move(speed, 0)
	}
	if in.IsKeyDown(core.KeyQ) {
		cc.Camera.Rotate(rot)
	}
	if in.IsKeyDown(core.KeyR) {
		cc.Camera.Rotate(-rot)
	}

	switch s := in.Scroll(); {
	case s > 0:
		cc.Camera.SetZoom(cc.Camera.Zoom * cc.ZoomSpeed)
	case s < 0:
		cc.Camera.SetZoom(cc.Camera.Zoom / cc.ZoomSpeed)
	}
}
