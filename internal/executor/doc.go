// Package executor runs independent clustering jobs side by side.
//
// It backs the sweep command, which repeats one problem under several
// worker counts. Each job is a Task; a Pool runs at most a fixed number of
// them at once and hands back one Result per Task in submission order.
//
//	pool := executor.NewPool(2, logger)
//	for _, t := range []int{1, 2, 4} {
//	    pool.Submit(executor.Task{
//	        Name: fmt.Sprintf("threads=%d", t),
//	        Execute: func(ctx context.Context) (interface{}, error) {
//	            return runWith(ctx, t)
//	        },
//	    })
//	}
//	results := pool.Execute(ctx)
//	fmt.Println(executor.Summarize(results))
//
// Cancelling the context stops tasks that have not started yet; they come
// back with an error wrapping the context error. Tasks already running are
// expected to observe the context themselves.
package executor
