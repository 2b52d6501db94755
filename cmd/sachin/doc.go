// Command sachin compiles and runs the procedural-plus-parallel language
// this module implements.
//
// Usage:
//
//	sachin compile <source>        compiles <source>, writing <source>.sachin
//	sachin run <intermediate-code> runs a previously compiled program
//	sachin execute <source>        compiles and runs <source> in one step
//
// Source is read from a plain text file; the compiled intermediate code is
// the line-oriented cell format described in internal/icode. Runtime input
// is read as whitespace-separated tokens from standard input, and output is
// written one value per line to standard output (internal/vm's Reader and
// Writer).
package main
