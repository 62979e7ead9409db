// Package server exposes both pipelines over a WebSocket connection, with
// status and progress streamed back to the client while a run executes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/arvandy/skillpipe/pkg/extractor"
	"github.com/arvandy/skillpipe/pkg/llm"
	"github.com/arvandy/skillpipe/pkg/matcher"
	"github.com/arvandy/skillpipe/pkg/normalizer"
	"github.com/arvandy/skillpipe/pkg/pipeline"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the wire format in both directions. Incoming types are
// "extract" and "match"; outgoing types are "status", "progress", "result"
// and "error".
type Message struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type extractRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

type matchRequest struct {
	CandidateSkills []string `json:"candidate_skills"`
	RequiredSkills  []string `json:"required_skills"`
	OptionalSkills  []string `json:"optional_skills"`
}

type Server struct {
	config *config.Config
	log    *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Server {
	return &Server{config: cfg, log: log}
}

// ListenAndServe blocks serving /ws and /health on the given address.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.log.Info("starting server", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug("connection closed", zap.Error(err))
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			s.sendMessage(conn, "error", fmt.Sprintf("invalid message: %v", err))
			continue
		}

		// Requests on one connection run serially; each run builds its own
		// collaborators so embedding caches stay run-scoped.
		s.handleMessage(conn, msg)
	}
}

func (s *Server) handleMessage(conn *websocket.Conn, msg Message) {
	switch msg.Type {
	case "extract":
		s.handleExtract(conn, msg)
	case "match":
		s.handleMatch(conn, msg)
	default:
		s.sendMessage(conn, "error", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Server) handleExtract(conn *websocket.Conn, msg Message) {
	var req extractRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendMessage(conn, "error", fmt.Sprintf("invalid extract request: %v", err))
		return
	}

	s.sendMessage(conn, "status", fmt.Sprintf("Extracting %s", req.Input))

	runner, err := pipeline.NewExtractRunner(s.config, extractor.NewPDFExtractor(), nil, nil, s.log)
	if err != nil {
		s.sendMessage(conn, "error", err.Error())
		return
	}

	result, err := runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    req.Input,
		OutputPath:   req.Output,
		MetadataPath: req.Metadata,
	})
	if err != nil {
		s.sendMessage(conn, "error", err.Error())
		return
	}

	s.sendMessage(conn, "status", fmt.Sprintf("Extracted %d chunks", len(result.Chunks)))
	s.sendResult(conn, map[string]any{
		"total_chunks":  len(result.Chunks),
		"output_file":   result.OutputFile,
		"metadata_file": result.MetadataFile,
	})
}

func (s *Server) handleMatch(conn *websocket.Conn, msg Message) {
	var req matchRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendMessage(conn, "error", fmt.Sprintf("invalid match request: %v", err))
		return
	}

	ollama, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     s.config.Model.Name,
		BaseURL:   s.config.Model.BaseURL,
		RateLimit: s.config.Model.RateLimit,
	})
	if err != nil {
		s.sendMessage(conn, "error", err.Error())
		return
	}

	norm := normalizer.New(s.config.Normalization, s.config.SynonymFile, s.config.AcronymFile, s.log)
	m := matcher.New(s.config, norm, llm.NewCachedEmbedder(ollama), matcher.NewLevenshteinScorer())

	scored := 0
	m.OnSkill = func(skill string) {
		scored++
		s.sendMessage(conn, "progress", fmt.Sprintf("Scored %d skills", scored))
	}

	s.sendMessage(conn, "status", "Starting skill matching")

	result, err := m.Match(context.Background(), req.CandidateSkills, req.RequiredSkills, req.OptionalSkills)
	if err != nil {
		s.sendMessage(conn, "error", err.Error())
		return
	}

	s.sendResult(conn, result)
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType, content string) {
	if err := conn.WriteJSON(Message{Type: msgType, Content: content}); err != nil {
		s.log.Error("error sending message", zap.Error(err))
	}
}

func (s *Server) sendResult(conn *websocket.Conn, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.sendMessage(conn, "error", fmt.Sprintf("failed to encode result: %v", err))
		return
	}
	if err := conn.WriteJSON(Message{Type: "result", Data: payload}); err != nil {
		s.log.Error("error sending result", zap.Error(err))
	}
}
