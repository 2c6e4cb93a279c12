package janus

import "context"

// StreamChunk is one increment of a streamed generation.
type StreamChunk struct {
	// Delta contains the incremental text for this chunk.
	Delta string
	// Done indicates this is the final chunk of the stream.
	Done bool
	// Err contains any error that occurred during streaming.
	Err error
}

// Generator is the interface to the external text-generation service. The
// bridge treats generation as an opaque collaborator: given a prompt,
// produce text, optionally streamed. Implementations live in the provider
// subpackages.
type Generator interface {
	// Generate produces a complete response for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream produces the response incrementally. The channel
	// closes after the final chunk or an error chunk.
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// NewGeneratorHandler adapts a Generator into a Handler: a working
// transition when generation starts, then a completed transition carrying
// the full generated text as an agent message.
//
// The streamed variant of the generation call is used so that cancelling
// the task context aborts the generation mid-flight instead of letting it
// run to completion against a terminal task.
func NewGeneratorHandler(g Generator) Handler {
	return HandlerFunc(func(ctx context.Context, tc *TaskContext) <-chan Update {
		ch := make(chan Update, 2)
		go func() {
			defer close(ch)
			ch <- Update{State: TaskStateWorking}

			stream, err := g.GenerateStream(ctx, tc.Message.TextContent())
			if err != nil {
				ch <- Update{Err: err}
				return
			}

			var text string
			for chunk := range stream {
				if chunk.Err != nil {
					ch <- Update{Err: chunk.Err}
					return
				}
				text += chunk.Delta
				if err := ctx.Err(); err != nil {
					// Task was cancelled; stop consuming and let the
					// provider tear the stream down via the context.
					return
				}
			}

			msg := NewAgentTextMessage(text)
			ch <- Update{State: TaskStateCompleted, Message: &msg}
		}()
		return ch
	})
}
