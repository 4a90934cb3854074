// +build !386,!amd64

package x86

const mode = 64
