// Package kinematics provides the integrators that advance a [nav.Pose]
// under a [nav.Command].
//
//   - [Unicycle]: explicit Euler, heading first then position
//   - [Arc]: exact integration of a constant speed and turn rate
//   - [Holonomic]: jump along the commanded heading by a fixed advance
//
// All integrators are stateless and safe for concurrent use.
package kinematics
