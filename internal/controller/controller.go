// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/innertalk/innertalk-tui/internal/chat"
	"github.com/innertalk/innertalk-tui/internal/ollama"
)

// =============================================================================
// STATE
// =============================================================================

// State is the controller's streaming phase.
type State int

const (
	// StateIdle means no generation is in flight; sends are accepted.
	StateIdle State = iota

	// StateStreaming means tokens are arriving for one conversation.
	StateStreaming

	// StateCancelling is the transient phase between a cancel request and
	// the return to idle.
	StateCancelling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// ErrBusy rejects a send while a stream is active, including a send into the
// streaming conversation itself.
var ErrBusy = errors.New("a response is already streaming")

// unreachableNotice is the assistant message recorded when the server is
// known to be down at send time.
const unreachableNotice = "Ollama is not reachable. Start the Ollama server and try again."

// =============================================================================
// COLLABORATORS
// =============================================================================

// Generator opens a streaming generation. *ollama.Client satisfies it; tests
// substitute a scripted fake.
type Generator interface {
	ChatStream(ctx context.Context, model string, messages []ollama.Message, callback ollama.StreamCallback) error
}

// ContextSource supplies the folder context block for outgoing requests.
// *context.Aggregator satisfies it.
type ContextSource interface {
	BuildContextBlock() string
}

// noContext is the ContextSource used when folder context is disabled.
type noContext struct{}

func (noContext) BuildContextBlock() string { return "" }

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the streaming session state machine. At most one stream is
// in flight per process. The mutex guards memory, the state field guards
// logic. Safe for concurrent use.
type Controller struct {
	store    *chat.Store
	gen      Generator
	ctxSrc   ContextSource
	sink     Sink
	defModel string

	mu         sync.Mutex
	state      State
	streamID   uint64 // generation counter; stale stream callbacks are discarded
	streamConv string
	buffer     string
	cancel     context.CancelFunc
	available  bool
}

// New creates a controller. sink may be nil when no UI is attached; events
// are then dropped. The service is assumed available until told otherwise.
func New(store *chat.Store, gen Generator, ctxSrc ContextSource, sink Sink) *Controller {
	if ctxSrc == nil {
		ctxSrc = noContext{}
	}
	if sink == nil {
		sink = func(tea.Msg) {}
	}
	return &Controller{
		store:     store,
		gen:       gen,
		ctxSrc:    ctxSrc,
		sink:      sink,
		available: true,
	}
}

// SetDefaultModel sets the model used when a send creates a conversation.
func (c *Controller) SetDefaultModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defModel = model
}

// SetServiceAvailable records the latest health-check verdict. While false,
// sends take the degraded path instead of opening a stream.
func (c *Controller) SetServiceAvailable(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = ok
}

// State returns the current streaming phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StreamingConversationID returns the conversation receiving tokens, or ""
// when idle.
func (c *Controller) StreamingConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamConv
}

// =============================================================================
// SEND
// =============================================================================

// Send records a user message and opens a stream for the reply. An empty
// conversationID creates a new conversation on the default model. Rejected
// with ErrBusy unless idle; the rejection mutates nothing.
//
// When the server is known to be unreachable, the user message is still
// recorded, a fixed assistant notice is appended in place of a reply, and
// the controller stays idle.
func (c *Controller) Send(conversationID, text string, attachments []chat.Attachment) (string, error) {
	c.mu.Lock()

	if c.state != StateIdle {
		c.mu.Unlock()
		return "", ErrBusy
	}

	var conv *chat.Conversation
	if conversationID == "" {
		conv = c.store.NewConversation(c.defModel)
	} else {
		var ok bool
		conv, ok = c.store.Get(conversationID)
		if !ok {
			c.mu.Unlock()
			return "", chat.ErrConversationNotFound
		}
	}

	if _, err := c.store.AppendMessage(conv.ID, chat.RoleUser, text, attachments); err != nil {
		c.mu.Unlock()
		return "", err
	}

	if !c.available {
		c.store.AppendMessage(conv.ID, chat.RoleAssistant, unreachableNotice, nil)
		c.mu.Unlock()
		return conv.ID, nil
	}

	// Placeholder the stream writes into.
	if _, err := c.store.AppendMessage(conv.ID, chat.RoleAssistant, "", nil); err != nil {
		c.mu.Unlock()
		return "", err
	}

	// Request is built once, before any tokens arrive; later folder
	// refreshes do not alter an in-flight request. Store accessors return
	// detached copies, so re-read to pick up the appends above.
	fresh, ok := c.store.Get(conv.ID)
	if !ok {
		c.mu.Unlock()
		return "", chat.ErrConversationNotFound
	}
	messages := buildMessages(fresh, c.ctxSrc.BuildContextBlock())

	ctx, cancel := context.WithCancel(context.Background())
	c.streamID++
	id := c.streamID
	c.state = StateStreaming
	c.streamConv = conv.ID
	c.buffer = ""
	c.cancel = cancel

	model := conv.Model
	convID := conv.ID
	c.mu.Unlock()

	c.sink(StreamStartedMsg{ConversationID: convID})

	go c.run(ctx, id, convID, model, messages)

	return convID, nil
}

// run drives one stream to completion on its own goroutine.
func (c *Controller) run(ctx context.Context, id uint64, convID, model string, messages []ollama.Message) {
	err := c.gen.ChatStream(ctx, model, messages, func(chunk ollama.StreamChunk) {
		if chunk.Error != nil {
			return // surfaced through ChatStream's return value
		}
		if chunk.Content != "" {
			c.onToken(id, convID, chunk.Content)
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		c.onError(id, convID, err)
		return
	}
	c.onComplete(id, convID)
}

// =============================================================================
// STREAM CALLBACKS
// =============================================================================

// onToken folds one token into the session buffer and rewrites the
// placeholder with the full accumulation.
func (c *Controller) onToken(id uint64, convID, token string) {
	c.mu.Lock()
	if id != c.streamID || c.state != StateStreaming {
		c.mu.Unlock()
		return
	}

	c.buffer += token
	buffer := c.buffer
	c.store.UpdateLastMessageContent(convID, buffer)
	c.mu.Unlock()

	c.sink(StreamTokenMsg{ConversationID: convID, Token: token, Buffer: buffer})
}

// onComplete finalizes a stream that ended normally.
func (c *Controller) onComplete(id uint64, convID string) {
	c.mu.Lock()
	if id != c.streamID || c.state != StateStreaming {
		c.mu.Unlock()
		return
	}

	content := c.buffer
	c.toIdle()
	c.mu.Unlock()

	c.sink(StreamCompleteMsg{ConversationID: convID, Content: content})
}

// onError rewrites the placeholder with the error text and returns to idle.
func (c *Controller) onError(id uint64, convID string, err error) {
	c.mu.Lock()
	if id != c.streamID || c.state != StateStreaming {
		c.mu.Unlock()
		return
	}

	c.store.UpdateLastMessageContent(convID, fmt.Sprintf("Error: %v", err))
	c.toIdle()
	c.mu.Unlock()

	c.sink(StreamErrorMsg{ConversationID: convID, Err: err})
}

// toIdle resets session fields. Caller holds the lock.
func (c *Controller) toIdle() {
	c.state = StateIdle
	c.streamConv = ""
	c.buffer = ""
	c.cancel = nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel stops the in-flight stream: the controller passes through
// Cancelling while the stream context is torn down, then returns to idle
// unconditionally, without waiting for the service to acknowledge. Partial
// content stays in the conversation. A cancel while idle is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()

	if c.state != StateStreaming {
		c.mu.Unlock()
		return
	}

	c.state = StateCancelling
	convID := c.streamConv
	cancel := c.cancel

	// Bump the generation so any straggler events from the dying stream
	// are discarded.
	c.streamID++
	c.mu.Unlock()

	// The controller stays in Cancelling until the context teardown
	// returns; sends are rejected for the whole window.
	if cancel != nil {
		cancel()
	}

	c.mu.Lock()
	c.toIdle()
	c.mu.Unlock()

	c.sink(StreamCancelledMsg{ConversationID: convID})
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteConversation removes a conversation, implicitly cancelling first
// when it is the one being streamed into.
func (c *Controller) DeleteConversation(id string) error {
	if c.StreamingConversationID() == id {
		c.Cancel()
	}
	return c.store.Delete(id)
}
