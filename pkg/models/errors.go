package models

import (
	"fmt"
	"strings"
)

// TargetTypeMismatchError reports a document targeting a document of a type
// it does not allow.
type TargetTypeMismatchError struct {
	// Targeting is the tag of the targeting document.
	Targeting string
	// Target is the tag of the targeted document; empty when it does not
	// exist.
	Target string
	// TargetID is the identifier the target reference names, if any.
	TargetID string
	Allowed  []string
}

func (e *TargetTypeMismatchError) Error() string {
	target := e.Target
	if target == "" {
		target = "a missing document"
	}
	if e.TargetID != "" {
		target += " " + e.TargetID
	}
	return fmt.Sprintf("%s targets %s, which is not one of [%s]", e.Targeting, target, strings.Join(e.Allowed, ", "))
}
