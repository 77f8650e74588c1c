// Package kmeans implements a barrier-synchronised parallel k-means engine
// for three-dimensional points.
//
// An Engine splits the points into one contiguous range per worker and runs
// every worker on its own goroutine. Each iteration a worker assigns its
// points to the nearest mean, the leader (worker 0) tallies the reassignments,
// every worker sums its points into private accumulators, and the leader
// merges those partial sums into new means. Four barrier rendezvous per
// iteration separate these steps; the shared arrays are written either on
// disjoint ranges or by the leader alone while every other worker is parked.
//
// The loop ends when an iteration reassigns no point. Means of clusters that
// receive no points are left unchanged.
//
// # Basic Usage
//
//	engine, err := kmeans.New(4, kmeans.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	res, err := engine.Run(ctx, initialMeans, points)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Means, res.Iterations)
//
// # Stopping Early
//
// WithMaxIterations bounds the number of iterations; a run that hits the
// bound returns Converged == false. Cancelling ctx stops every worker at the
// next tally and Run returns the context error without a result.
package kmeans
