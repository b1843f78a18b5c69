//go:build !headless

package main

const defaultBackend = "oto"
