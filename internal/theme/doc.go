// Package theme rewrites the color scheme anchor reference in a terminal
// config file to match a target sun state, preserving every other line
// byte-for-byte.
package theme
