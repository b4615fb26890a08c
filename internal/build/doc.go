// Package build runs the recipe site pipeline: load every recipe, render the
// pages and the index, then maintain the page manifest.
//
// All execution paths (CLI, tests) route through Builder. A build either
// completes or stops at the first error; loading runs before anything is
// written, so invalid input never leaves partial output behind.
package build
