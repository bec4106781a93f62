package platform

// MaxPin is the highest GP number on the RP2040 Pico header.
const MaxPin = 29
