// Package crashlog wraps top-level operations so a panic in codec or
// shell code is reported and logged instead of killing the process with
// a bare stack trace.
package crashlog

func Do(work func(), onPanic func(r interface{})) {
	defer func() {
		if r := recover(); r != nil {
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	work()
}
