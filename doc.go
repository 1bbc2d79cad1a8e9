// Package splatsel maintains GPU-resident selections over 3D Gaussian
// splat collections. A selection is one bit per splat packed into 32-bit
// words; compute kernels combine selections with the five boolean set
// operations and derive them geometrically by testing splat positions
// against volumetric shapes. A CPU mirror of both kernels backs the test
// suite and serves as a software fallback.
package splatsel
