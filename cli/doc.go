// Package cli implements the diarkit command line.
//
// The grammar is one task followed by one mode:
//
//	diarkit (sad|scd|ovl|emb|dom) train    [options] <root> <protocol>
//	diarkit (sad|scd|ovl|emb|dom) validate [options] <train> <protocol>
//	diarkit (sad|scd|ovl|emb|dom) apply    [options] <validate> <protocol>
//	diarkit -h | --help
//	diarkit --version
//
// Parsed invocations are handed to a Dispatcher, which books the compute
// device, builds the task Application and runs the requested lifecycle call.
package cli
