//go:build !rangedebug

package invariant

const strict = false
