package lsp

import (
	"context"
	"encoding/json"
	"errors"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/flow-design/flow-helper/internal/completion"
	"github.com/flow-design/flow-helper/internal/tooling"
)

// handleTextDocumentCompletion handles completion requests
func (s *Server) handleTextDocumentCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse completion params")
	}

	uri := string(params.TextDocument.URI)
	pos := convertPosition(params.Position)

	var trigger string
	if params.Context != nil {
		trigger = params.Context.TriggerCharacter
	}

	completions, err := s.api.GetCompletions(ctx, uri, pos, trigger, s.Options())
	if errors.Is(err, tooling.ErrDocumentNotFound) {
		s.logger.Warn("completion for unknown document", zap.String("uri", uri))
		return reply(ctx, protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil)
	}
	if err != nil {
		s.logger.Error("error getting completions", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get completions")
	}

	// Convert to LSP completion items
	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, c := range completions {
		items = append(items, convertCompletionItem(c))
	}

	result := protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}

	return reply(ctx, result, nil)
}

func convertCompletionItem(c completion.Item) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      c.Label,
		Kind:       convertCompletionKind(c.Kind),
		Detail:     c.Detail,
		InsertText: c.InsertText,
		SortText:   c.SortText,
	}

	if c.Documentation != "" {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: c.Documentation,
		}
	}

	if c.Snippet {
		item.InsertTextFormat = protocol.InsertTextFormatSnippet
	} else {
		item.InsertTextFormat = protocol.InsertTextFormatPlainText
	}

	if c.Range != nil {
		item.TextEdit = &protocol.TextEdit{
			Range:   convertRange(*c.Range),
			NewText: c.InsertText,
		}
	}

	return item
}

// handleTextDocumentHover handles hover requests
func (s *Server) handleTextDocumentHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse hover params")
	}

	uri := string(params.TextDocument.URI)
	hover, err := s.api.GetHover(uri, convertPosition(params.Position))
	if errors.Is(err, tooling.ErrDocumentNotFound) {
		return reply(ctx, nil, nil)
	}
	if err != nil {
		s.logger.Error("error getting hover", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get hover information")
	}

	if hover == nil {
		return reply(ctx, nil, nil)
	}

	r := convertRange(hover.Range)
	result := protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: hover.Contents,
		},
		Range: &r,
	}

	return reply(ctx, result, nil)
}

// convertCompletionKind converts completion item kinds to LSP kinds
func convertCompletionKind(kind completion.Kind) protocol.CompletionItemKind {
	switch kind {
	case completion.KindModule:
		return protocol.CompletionItemKindModule
	case completion.KindField:
		return protocol.CompletionItemKindField
	case completion.KindMethod:
		return protocol.CompletionItemKindMethod
	case completion.KindValue:
		return protocol.CompletionItemKindValue
	default:
		return protocol.CompletionItemKindText
	}
}

func convertPosition(p protocol.Position) completion.Position {
	return completion.Position{
		Line:      int(p.Line),
		Character: int(p.Character),
	}
}

func convertRange(r completion.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(r.Start.Line),
			Character: uint32(r.Start.Character),
		},
		End: protocol.Position{
			Line:      uint32(r.End.Line),
			Character: uint32(r.End.Character),
		},
	}
}
