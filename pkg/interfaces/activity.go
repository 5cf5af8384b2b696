package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record emitted by catalog jobs.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives activity records; go-users sinks satisfy it.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
