package pool

// Job is a single unit of work. A submitted job is run exactly once, by
// exactly one worker, on that worker's goroutine.
//
// Jobs have no result channel; a job that needs to report back should
// capture a channel or other sink of its own.
type Job func()

// PanicHandler is called on the worker goroutine after a job panics.
type PanicHandler func(err *PanicError)
