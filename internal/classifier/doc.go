// Package classifier implements batched LLM genre classification.
//
// The pipeline per batch is: render the batch into one few-shot prompt,
// send it through an [llm.Backend], parse `Track N: **Category**` lines out
// of the reply with fuzzy label recovery, and accept the attempt when at
// least 70% of the batch resolved. Rejected attempts are retried with
// exponential backoff up to the configured budget; an exhausted batch
// yields an all-nil result.
//
// ClassifyBatch and ClassifyTracks are total: for any input they return a
// result list and never an error. Only backend construction can fail, and
// that happens before a Classifier exists.
package classifier
