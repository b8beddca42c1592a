// Package lsp implements the Language Server Protocol front end of
// flow-helper. It keeps open documents in a tooling.API and answers
// completion and hover requests for component markup.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/flow-design/flow-helper/internal/completion"
	"github.com/flow-design/flow-helper/internal/tooling"
)

// TriggerCharacters make the client ask for completion without an explicit
// request: tag starts, attribute separators, binding prefixes and quotes.
var TriggerCharacters = []string{"<", " ", ":", "@", `"`, "'", "="}

// settingsSection is the key client settings are nested under
const settingsSection = "flow-helper"

// Config configures a Server
type Config struct {
	// API holds documents and runs completion. Required.
	API *tooling.API

	// Logger receives server logs. Nil discards them.
	Logger *zap.Logger

	// Defaults are the completion options before any client settings
	Defaults completion.Options

	// Version is reported to the client in the initialize result
	Version string
}

// Server implements the LSP server for flow-helper
type Server struct {
	// api is the tooling API that holds documents and runs completion
	api *tooling.API

	// conn is the JSON-RPC connection
	conn jsonrpc2.Conn

	// client is the LSP client interface
	client protocol.Client

	logger *zap.Logger

	// workspaceRoot is the root directory of the workspace
	workspaceRoot string

	// Server capabilities
	capabilities protocol.ServerCapabilities

	version string

	// settings guards the option layers; the config watcher writes defaults
	// from another goroutine
	settings       sync.RWMutex
	defaults       completion.Options
	clientSettings completion.Options

	// cancel is used to signal server shutdown
	cancel context.CancelFunc
}

// NewServer creates a new LSP server instance
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := config.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		api:      config.API,
		logger:   logger,
		version:  version,
		defaults: config.Defaults,
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: TriggerCharacters,
				ResolveProvider:   false,
			},
			HoverProvider: true,
		},
	}
}

// SetDefaults replaces the options client settings are layered over. It is
// safe to call while the server is running.
func (s *Server) SetDefaults(opts completion.Options) {
	s.settings.Lock()
	s.defaults = opts
	s.settings.Unlock()
	s.logger.Info("completion defaults updated",
		zap.Int("indent_size", opts.IndentSize),
		zap.String("quote", opts.Quote))
}

// Options returns the options for one request: client settings where set,
// defaults otherwise.
func (s *Server) Options() completion.Options {
	s.settings.RLock()
	defer s.settings.RUnlock()

	opts := s.defaults
	if s.clientSettings.IndentSize > 0 {
		opts.IndentSize = s.clientSettings.IndentSize
	}
	if s.clientSettings.Quote != "" {
		opts.Quote = s.clientSettings.Quote
	}
	return opts
}

func (s *Server) applyClientSettings(settings interface{}) {
	opts, ok := parseClientSettings(settings)
	if !ok {
		return
	}
	s.settings.Lock()
	s.clientSettings = opts
	s.settings.Unlock()
	s.logger.Debug("client settings applied",
		zap.Int("indent_size", opts.IndentSize),
		zap.String("quote", opts.Quote))
}

// parseClientSettings reads {"flow-helper": {"indent-size": N, "quotes":
// "single"|"double"}}. The bare inner object is accepted too. Unset fields
// stay zero.
func parseClientSettings(settings interface{}) (completion.Options, bool) {
	if settings == nil {
		return completion.Options{}, false
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return completion.Options{}, false
	}

	section := gjson.GetBytes(raw, settingsSection)
	if !section.Exists() {
		section = gjson.ParseBytes(raw)
	}
	if !section.IsObject() {
		return completion.Options{}, false
	}

	var opts completion.Options
	if n := section.Get("indent-size"); n.Type == gjson.Number && n.Int() > 0 {
		opts.IndentSize = int(n.Int())
	}
	if q := section.Get("quotes"); q.Type == gjson.String {
		opts.Quote = completion.QuoteFor(q.String())
	}
	return opts, true
}

// Run starts the LSP server on stdin/stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, stdrwc{})
}

// Serve speaks LSP over rwc until the client sends exit, the stream closes
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	s.logger.Info("starting flow-helper language server", zap.String("version", s.version))

	// Create context with cancellation for shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.conn = conn
	s.client = protocol.ClientDispatcher(conn, s.logger.Named("client"))

	// Register handlers
	conn.Go(ctx, s.handler())

	select {
	case <-ctx.Done():
	case <-conn.Done():
	}

	s.logger.Info("shutting down flow-helper language server")
	err := conn.Close()
	<-conn.Done()
	return err
}

// handler returns the JSON-RPC handler function
func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Debug("received", zap.String("method", req.Method()))

		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return s.handleInitialized(ctx, reply, req)
		case protocol.MethodShutdown:
			return s.handleShutdown(ctx, reply, req)
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleTextDocumentDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleTextDocumentDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleTextDocumentDidClose(ctx, reply, req)
		case protocol.MethodTextDocumentCompletion:
			return s.handleTextDocumentCompletion(ctx, reply, req)
		case protocol.MethodTextDocumentHover:
			return s.handleTextDocumentHover(ctx, reply, req)
		case protocol.MethodWorkspaceDidChangeConfiguration:
			return s.handleDidChangeConfiguration(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse initialize params")
	}

	if params.ClientInfo != nil {
		s.logger.Info("initialize", zap.String("client", params.ClientInfo.Name), zap.String("client_version", params.ClientInfo.Version))
	}

	// Extract workspace root from params
	if len(params.WorkspaceFolders) > 0 {
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	} else if params.RootURI != "" {
		s.workspaceRoot = params.RootURI.Filename()
	}
	if s.workspaceRoot != "" {
		s.logger.Info("workspace root set", zap.String("root", s.workspaceRoot))
	}

	s.applyClientSettings(params.InitializationOptions)

	result := protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "flow-helper",
			Version: s.version,
		},
	}

	return reply(ctx, result, nil)
}

// handleInitialized tells the client which catalog completion runs on
func (s *Server) handleInitialized(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	cat := s.api.Catalog()
	err := s.client.LogMessage(ctx, &protocol.LogMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: fmt.Sprintf("flow-helper: %d %s components loaded", cat.Len(), cat.Library),
	})
	if err != nil {
		s.logger.Warn("failed to send log message", zap.Error(err))
	}
	return reply(ctx, nil, nil)
}

// handleShutdown handles the shutdown request
func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Info("shutdown requested")
	return reply(ctx, nil, nil)
}

// handleExit handles the exit notification
func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Info("exit requested")
	// Reply first, then trigger shutdown
	if err := reply(ctx, nil, nil); err != nil {
		s.logger.Warn("error replying to exit", zap.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// handleTextDocumentDidOpen handles document open notifications
func (s *Server) handleTextDocumentDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse didOpen params")
	}

	doc := s.api.OpenDocument(
		string(params.TextDocument.URI),
		string(params.TextDocument.LanguageID),
		params.TextDocument.Text,
		int(params.TextDocument.Version),
	)
	s.logger.Debug("document opened",
		zap.String("uri", doc.URI),
		zap.String("language", doc.LanguageID),
		zap.Int("version", doc.Version))

	return reply(ctx, nil, nil)
}

// handleTextDocumentDidChange handles document change notifications
func (s *Server) handleTextDocumentDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse didChange params")
	}

	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	// We use full document sync, so take the last change
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	doc := s.api.UpdateDocument(string(params.TextDocument.URI), content, int(params.TextDocument.Version))
	s.logger.Debug("document changed", zap.String("uri", doc.URI), zap.Int("version", doc.Version))

	return reply(ctx, nil, nil)
}

// handleTextDocumentDidClose handles document close notifications
func (s *Server) handleTextDocumentDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse didClose params")
	}

	s.api.CloseDocument(string(params.TextDocument.URI))
	s.logger.Debug("document closed", zap.String("uri", string(params.TextDocument.URI)))

	return reply(ctx, nil, nil)
}

// handleDidChangeConfiguration picks up new client settings
func (s *Server) handleDidChangeConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeConfigurationParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse didChangeConfiguration params")
	}

	s.applyClientSettings(params.Settings)
	return reply(ctx, nil, nil)
}

// replyWithError sends an LSP-compliant error response
func (s *Server) replyWithError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{
		Code:    code,
		Message: message,
	})
}

// stdrwc implements io.ReadWriteCloser for stdin/stdout
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
