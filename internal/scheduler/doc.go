// Package scheduler orders dependency-linked tasks and dates them.
//
// Resolve produces a topological order using an input-order tie-break and
// rejects dependency cycles. Compute walks that order once, serializing tasks
// on a single track against a daily work-hours budget and flagging due-date
// conflicts as warnings. Both are pure functions of their arguments.
//
// Example usage:
//
//	svc := scheduler.NewService()
//	result, err := svc.Generate(scheduler.Request{Tasks: tasks})
//	if err != nil {
//	    var cycle *scheduler.CycleError
//	    if errors.As(err, &cycle) {
//	        fmt.Println("cycle at", cycle.Title)
//	    }
//	}
package scheduler
