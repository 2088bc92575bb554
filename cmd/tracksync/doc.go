// Command tracksync maintains music catalogs and reconciles them against
// destination copies of a library.
package main
