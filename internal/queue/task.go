package queue

// StreamName is the Redis stream generation requests are dispatched on.
const StreamName = "problem-generation-requests"

// ConsumerGroup is the Redis consumer group workers join to share the stream.
const ConsumerGroup = "problem-generator-workers"

// DLQStreamName holds messages that exhausted their retry budget.
const DLQStreamName = "problem-generation-requests:dlq"
