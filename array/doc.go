// Package array implements TiPi-Go's strided, n-dimensional numeric
// array type: a typed, shape-aware container with three interchangeable
// backing representations (flat, strided, selected), zero-copy views
// (slices, ranged views, index-list selections), per-element map/fill/
// scan, reductions, pad/crop/extract, and rank/shape manipulation.
//
// Arrays are generic over their element type (one of the Numeric
// kinds); rank is carried at runtime in the array's shape.Shape rather
// than as a Go const-generic parameter, since the language does not
// support const generics. This mirrors the "sum type with three
// variants; methods dispatch on the variant" option for the backing
// representation, applied one level up to the element type via Go
// generics instead of a tagged dispatch table.
//
// Views never copy: Slice, View, and Select all share the owning
// Array's backing buffer and must not outlive it. Copy, Flatten, and
// the operations that build a new array (Extract, Pad, Crop, MoveDim,
// Dot, Outer) allocate a fresh, owning, flat buffer.
package array
