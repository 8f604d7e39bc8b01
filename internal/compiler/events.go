package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"speckit/internal/ir"
)

// CompileEvent parses a CUE value into an EventMessageSpec. Channel names
// usually contain dots ("order.created"), so the label is passed in by the
// loader rather than recovered from the (quoted) path selector.
func CompileEvent(channel string, v cue.Value) (*ir.EventMessageSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.EventMessageSpec{Channel: channel}

	messageVal := v.LookupPath(cue.ParsePath("message"))
	if !messageVal.Exists() {
		return nil, &CompileError{
			Field:   "message",
			Message: fmt.Sprintf("event %q must bind a message model", channel),
			Pos:     v.Pos(),
		}
	}
	message, err := messageVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Message = message

	if pub := v.LookupPath(cue.ParsePath("publish")); pub.Exists() {
		spec.Publish, err = pub.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}
	if sub := v.LookupPath(cue.ParsePath("subscribe")); sub.Exists() {
		spec.Subscribe, err = sub.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	if !spec.Publish && !spec.Subscribe {
		return nil, &CompileError{
			Field:   "event",
			Message: fmt.Sprintf("event %q must have publish: true or subscribe: true (or both)", channel),
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}
