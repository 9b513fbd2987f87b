// Package optim declares the Mapping/DifferentiableMapping contracts
// consumed by an outer minimizer, plus a small reverse-communication
// Driver implementing the task cycle (COMPUTE_FG, NEW_X, FINAL_X,
// ERROR), gradient-tolerance convergence, and box projection. The
// descent algorithm itself is a minimal steepest-descent stand-in:
// the contract between caller and driver, not a particular solver, is
// what this package fixes.
package optim
