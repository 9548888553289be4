// Package tabledef reads table definition files.
//
// A definition file holds one column per line in PostgreSQL syntax:
//
//	# gaia_dr2 source table
//	source_id bigint
//	ra double precision
//	flags [integer[]]
//
// Lines whose first non-blank character is '#' are comments. Blank lines are
// skipped. Surrounding whitespace is trimmed and every '[' and ']' is removed;
// the column types are not validated.
package tabledef
