package xr

import (
	"math"

	"xrscene/engine"
)

// PoseFromWebXR converts a right-handed WebXR transform (position and unit
// orientation quaternion) into a left-handed scene pose.
func PoseFromWebXR(px, py, pz, qx, qy, qz, qw float64) engine.Pose {
	return engine.Pose{
		Position: engine.V3(float32(px), float32(py), float32(-pz)),
		Rotation: quatToEuler(qx, qy, -qz, -qw),
	}
}

// quatToEuler returns yaw/pitch/roll angles (x = pitch, y = yaw, z = roll)
// for a unit quaternion.
func quatToEuler(qx, qy, qz, qw float64) engine.Vec3 {
	const limit = 0.4999999
	zAxisY := qy*qz - qx*qw
	if zAxisY < -limit {
		return engine.V3(math.Pi/2, float32(2*math.Atan2(qy, qw)), 0)
	}
	if zAxisY > limit {
		return engine.V3(-math.Pi/2, float32(2*math.Atan2(qy, qw)), 0)
	}
	sqw, sqx, sqy, sqz := qw*qw, qx*qx, qy*qy, qz*qz
	return engine.Vec3{
		X: float32(math.Asin(-2 * zAxisY)),
		Y: float32(math.Atan2(2*(qz*qx+qy*qw), sqz-sqx-sqy+sqw)),
		Z: float32(math.Atan2(2*(qx*qy+qz*qw), -sqz-sqx+sqy+sqw)),
	}
}
