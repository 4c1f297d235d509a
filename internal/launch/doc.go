// Package launch turns a qbzr request into a container run.
//
// Plan builds the run options (mounts, environment, user and the inner
// bash command) from a discovered bzr layout, and Launcher sequences path
// discovery, image availability, the identity lookup and the run itself.
package launch
