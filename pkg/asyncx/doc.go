// Package asyncx provides the fan-out primitives used by the tool batch.
//
// [AllSettled] runs a set of functions concurrently and always returns one
// [Result] per function, in input order, so a failure in one function never
// hides the outcome of its siblings. [MapSettled] is the slice form.
//
//	results := asyncx.MapSettled(ctx, calls, func(ctx context.Context, c Call) (Output, error) {
//	    return execute(ctx, c)
//	})
//	for i, r := range results {
//	    if !r.OK() {
//	        // calls[i] failed, siblings are unaffected
//	    }
//	}
package asyncx
