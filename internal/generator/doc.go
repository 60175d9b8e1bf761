// Package generator is the tag page pipeline shared by every command:
// discover posts, build the tag index, then write or compare the pages.
package generator
