// Package plan is the request/response layer in front of the scheduler.
//
// It defines the JSON and YAML wire shapes, validates caller input (titles,
// effort bounds, duplicate titles, unknown dependencies), converts to and from
// scheduler types and loads or saves documents on disk.
package plan
