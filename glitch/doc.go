// Package glitch implements the per-frame execution engine behind the analog
// and digital glitch post-processing effects.
//
// A Pass owns the state that has to survive between frames (timing
// accumulators, the random stream, the noise texture and a pool of transient
// frame buffers) and, once per frame, turns a parameter set into a single
// blend Invocation on a Device. How the parameters are authored and how the
// blend is realized per pixel are left to the caller.
package glitch
