package x86

const mode = 32
