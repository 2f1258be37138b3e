// Command resilientctl drives the executor against a simulated flaky
// dependency, for exercising retry, circuit-breaker and hedge behavior
// from the command line.
package main

func main() {
	Execute()
}
