// Package tv implements the hyperbolic total variation regularizer:
// a smooth, everywhere-differentiable edge-preserving penalty built
// from per-block differences, for arrays of rank 1 through 3.
package tv
