// Package pe locates the CLI metadata root inside a portable executable.
package pe
