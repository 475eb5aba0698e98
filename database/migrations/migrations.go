// Package migrations holds the kproduct schema. Each file registers its
// migrations from init(); importing the package is enough to make them
// available to the runner.
package migrations
