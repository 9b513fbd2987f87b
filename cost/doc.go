// Package cost implements the weighted quadratic data-fidelity cost
// used to fit a reconstructed object against observed data through a
// convolution operator: f(x) = (alpha/2) * sum(w * (cnvl(x) - dat)^2),
// with gradient alpha * cnvl^T(w * (cnvl(x) - dat)).
package cost
