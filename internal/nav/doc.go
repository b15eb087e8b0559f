// Package nav provides the core simulation primitives for planar guidance.
//
// The package defines the interfaces and types every scenario is built from:
//
//   - [Pose]: position and heading of the point robot
//   - [GuidanceLaw]: turns the current pose into a [Command]
//   - [Integrator]: advances a pose by one timestep under a command
//   - [Simulator]: drives law and integrator until a termination condition
//   - [Batch]: runs independent simulations concurrently
//
// # Example
//
//	law, _ := guidance.NewCarrotChase(ws, guidance.DefaultCarrotParams())
//	sim := nav.New(law, kinematics.NewUnicycle())
//	result, _ := sim.Run(ctx, nav.Pose{X: 30, Y: 10, Heading: -math.Pi / 2}, cfg)
//
// # Termination
//
// Every iteration checks the goal first, then the step cap. A law that
// cannot produce a target returns [ErrNoTarget], which ends the run with
// [OutcomeNoTarget] instead of failing it.
//
// # Thread Safety
//
// A Simulator run owns its pose and trajectory exclusively. Laws and
// integrators are stateless, so one Simulator may be shared by [Batch].
package nav
