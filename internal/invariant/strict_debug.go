//go:build rangedebug

package invariant

const strict = true
