// Package domain holds the validated value objects shared by the request
// layer and the project store: task and project titles and effort hours.
package domain
