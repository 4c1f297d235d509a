// Package docker runs the qbzr container through the Docker Engine API.
//
// It checks for and pulls the image, creates a container with the X11
// socket and repository mounted, attaches the terminal and waits for the
// GUI to exit. The Client type is the main entry point.
package docker
