// Package resilience groups the fault tolerance patterns used around
// upstream site calls and the database: circuit breakers and retry logic
// with exponential backoff.
//
// Usage:
//
//	cb := circuitbreaker.New(circuitbreaker.EndpointConfig("endpoint:tecmundo"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callUpstream()
//	})
//
//	err := retry.WithBackoff(ctx, retry.EndpointConfig(), func() error {
//	    return performOperation()
//	})
package resilience
