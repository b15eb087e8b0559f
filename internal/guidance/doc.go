// Package guidance provides the guidance laws that steer the point robot.
//
// Each law implements [nav.GuidanceLaw] and turns the current pose into a
// command for one integration step:
//
//   - [Bug0]: reactive goal seeking with a fixed angular wall-follow scan
//   - [CarrotChase]: proportional heading control toward a look-ahead carrot
//   - [NLGL]: nonlinear guidance toward the capture-circle intersection
//   - [VectorField]: saturated cross-track heading field around the path
//
// # Usage
//
//	law, err := guidance.NewNLGL(ws, guidance.NLGLParams{L: 10, Speed: 1})
//	sim := nav.New(law, kinematics.NewUnicycle())
//
// Laws are stateless: the pose is passed in on every call, so one law value
// may serve any number of runs. All laws implement [nav.Configurable] for
// parameter sweeps.
package guidance
