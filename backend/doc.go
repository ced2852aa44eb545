// Package backend runs training, validation and inference jobs on the
// external compute worker.
//
// diarkit does not implement neural network training itself. Each lifecycle
// call is turned into a Job, written as job.json into the job's artifact
// directory, and handed to the configured worker command:
//
//	<command...> <mode> --job <dir>/job.json
//
// The worker's output is streamed to the terminal and its exit status
// decides whether the job succeeded.
package backend
