package assistant

import (
	"context"
	"fmt"

	"github.com/avaldez/proforma/internal/domain"
)

// FieldApplier folds assistant-generated patches into the working draft.
// Fields the user already touched are expected to survive unchanged.
type FieldApplier interface {
	ApplyAIFields(p domain.DraftPatch) (domain.Draft, bool, error)
}

// Conversation accumulates the history of one guided flow.
type Conversation struct {
	Flow         string
	Turns        []Turn
	QuickReplies []string
	Progress     Progress
}

// TurnResult summarizes the outcome of one conversation turn.
type TurnResult struct {
	Reply        string
	Applied      int // field sets folded into the draft
	Skipped      int // field sets dropped as malformed or fully user-owned
	QuickReplies []string
	Progress     Progress
}

// ChatService drives guided conversations with the assistant and applies
// the generated fields through a mediator.
type ChatService struct {
	client Client
}

func NewChatService(client Client) *ChatService {
	return &ChatService{client: client}
}

// NewConversation starts an empty conversation for the given flow.
func (s *ChatService) NewConversation(flow string) *Conversation {
	return &Conversation{Flow: flow}
}

// NextTurn sends the user message with the accumulated history, records
// both sides of the exchange, and applies every parseable field set.
// Malformed sets and sets the mediator rejects are counted as skipped
// rather than failing the turn; only transport failures return an error.
func (s *ChatService) NextTurn(
	ctx context.Context,
	conv *Conversation,
	message string,
	clientData domain.Client,
	flowContext map[string]string,
	applier FieldApplier,
) (TurnResult, error) {
	if conv == nil {
		return TurnResult{}, fmt.Errorf("nil conversation")
	}

	resp, err := s.client.Converse(ctx, ChatRequest{
		Flow:    conv.Flow,
		Message: message,
		History: conv.Turns,
		Context: flowContext,
		Client:  clientData,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("conversing with assistant: %w", err)
	}

	conv.Turns = append(conv.Turns,
		Turn{Role: "user", Content: message},
		Turn{Role: "assistant", Content: resp.Message},
	)
	conv.QuickReplies = resp.QuickReplies
	conv.Progress = resp.Progress

	result := TurnResult{
		Reply:        resp.Message,
		QuickReplies: resp.QuickReplies,
		Progress:     resp.Progress,
	}

	for _, raw := range resp.FieldSets {
		fs, err := DecodeFieldSet(raw)
		if err != nil {
			result.Skipped++
			continue
		}
		patch, err := fs.ToPatch()
		if err != nil {
			result.Skipped++
			continue
		}
		if _, applied, err := applier.ApplyAIFields(patch); err != nil || !applied {
			result.Skipped++
			continue
		}
		result.Applied++
	}
	return result, nil
}
