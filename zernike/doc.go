// Package zernike builds Noll-indexed Zernike basis fields on a
// circular pupil and orthonormalizes them with a Gram-Schmidt pass to
// remove discretization bias.
package zernike
