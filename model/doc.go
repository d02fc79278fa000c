// Package model contains the two data records the launcher revolves
// around: the remote manifest describing the desired installation target
// and the local settings persisted across runs. The types here carry no
// behaviour beyond validation and normalisation; fetching, persistence and
// stage execution live in the service packages.
package model
