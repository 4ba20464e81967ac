// Package queue provides the unbounded multi-producer, multi-consumer FIFO
// queue that connects job submitters to pool workers.
//
// Every pushed item is handed to exactly one Pop caller, in push order.
// Closing the queue rejects new pushes but lets consumers drain what is
// already queued before they observe closure.
package queue
