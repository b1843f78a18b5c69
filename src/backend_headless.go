//go:build headless

package main

const defaultBackend = "null"
