// Package idgen generates run identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RunPrefix marks an identifier as a pipeline run id.
const RunPrefix = "run-"

// alphabet is lowercase alphanumerics so run ids are safe in file names,
// NATS subjects, and log lines alike.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RunIDLength is the number of random characters after the prefix.
const RunIDLength = 12

// NewRunID returns a fresh run id such as "run-k3v9q0x2m1ab".
func NewRunID() (string, error) {
	id, err := nanoid.Generate(alphabet, RunIDLength)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return RunPrefix + id, nil
}
