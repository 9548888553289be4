// Package files groups file access helpers.
//
// The filesystem sub-package abstracts the OS and an in-memory filesystem so
// the loader and the table definition reader can be tested without disk I/O.
package files
