// Package main is the linksan command line tool.
//
// It sanitizes URLs given as arguments, or one URL per line on stdin, and
// prints the cleaned URLs to stdout. Logs go to stderr.
//
// Usage:
//
//	linksan 'https://example.com/?utm_source=x&id=1'
//	pbpaste | linksan -json
//	linksan -rules ./rules.d < links.txt
package main
