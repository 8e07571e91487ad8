// Package async runs independent tasks concurrently with an upper bound on
// parallelism and collects every task's error.
//
// [RunBounded] is the fan-out primitive behind each deployment stage: it
// does not return until every task has finished, which makes each call a
// synchronization barrier.
package async
