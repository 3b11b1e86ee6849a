package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ramonehamilton/mtg-price-finder/internal/api/response"
	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to receive the evaluation request.
	requestWait = 30 * time.Second

	// Maximum deck request size accepted from a peer.
	maxMessageSize = 64 * 1024
)

// DeckEvaluator evaluates whole deck lists.
type DeckEvaluator interface {
	Evaluate(ctx context.Context, lines []deck.Line, opts deck.Options) deck.Report
}

// DeckHandler handles deck evaluation requests.
type DeckHandler struct {
	evaluator DeckEvaluator
	upgrader  websocket.Upgrader
}

// NewDeckHandler creates a new DeckHandler. allowedOrigin decides which
// browser origins may open the evaluation stream.
func NewDeckHandler(evaluator DeckEvaluator, allowedOrigin func(r *http.Request) bool) *DeckHandler {
	if allowedOrigin == nil {
		allowedOrigin = func(*http.Request) bool { return true }
	}
	return &DeckHandler{
		evaluator: evaluator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowedOrigin,
		},
	}
}

// EvaluateRequest is the body of a deck evaluation.
type EvaluateRequest struct {
	List              string `json:"list"`
	ExcludeBasicLands bool   `json:"exclude_basic_lands"`
	ExcludeSpecial    bool   `json:"exclude_special"`
}

func (req EvaluateRequest) lines() ([]deck.Line, error) {
	lines := deck.Parse(req.List)
	if len(lines) == 0 {
		return nil, errors.New("deck list contains no cards")
	}
	return lines, nil
}

// Evaluate prices a deck list and returns the full report.
func (h *DeckHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := response.Decode(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	lines, err := req.lines()
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	report := h.evaluator.Evaluate(r.Context(), lines, deck.Options{
		ExcludeBasicLands: req.ExcludeBasicLands,
		ExcludeSpecial:    req.ExcludeSpecial,
	})
	response.Success(w, NewReportView(report))
}

// StreamMessage is one websocket message of an evaluation stream.
type StreamMessage struct {
	Type   string      `json:"type"` // "row", "summary" or "error"
	Index  int         `json:"index,omitempty"`
	Row    *RowView    `json:"row,omitempty"`
	Report *ReportView `json:"report,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Stream upgrades to a websocket, reads one EvaluateRequest and streams a
// "row" message per line as it settles, then a "summary" message.
func (h *DeckHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(requestWait))

	var req EvaluateRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeMessage(conn, StreamMessage{Type: "error", Error: "invalid request"})
		return
	}
	lines, err := req.lines()
	if err != nil {
		writeMessage(conn, StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	// A closed connection cancels the rest of the run.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		_ = conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	report := h.evaluator.Evaluate(ctx, lines, deck.Options{
		ExcludeBasicLands: req.ExcludeBasicLands,
		ExcludeSpecial:    req.ExcludeSpecial,
		Observer: func(i int, row deck.Evaluation) {
			view := NewRowView(row)
			if err := writeMessage(conn, StreamMessage{Type: "row", Index: i, Row: &view}); err != nil {
				cancel()
			}
		},
	})

	view := NewReportView(report)
	_ = writeMessage(conn, StreamMessage{Type: "summary", Report: &view})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func writeMessage(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
