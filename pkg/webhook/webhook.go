package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/igolaizola/tvrelay/pkg/exit"
	"github.com/igolaizola/tvrelay/pkg/signal"
	"github.com/igolaizola/tvrelay/pkg/trade"
	"go.uber.org/zap"
)

const maxBodySize = 64 << 10

// Relay handles the alerts received by the webhook.
type Relay interface {
	// Handle relays an alert and returns the message sent to the chat. The
	// message is also returned when only its delivery failed.
	Handle(ctx context.Context, text string) (string, error)
	Trades() []*trade.Trade
}

type Server struct {
	addr   string
	relay  Relay
	log    *zap.Logger
	router chi.Router
}

func New(addr string, relay Relay, log *zap.Logger) *Server {
	s := &Server{
		addr:  addr,
		relay: relay,
		log:   log,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logging)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", s.webhook)
	r.Get("/health", s.health)
	r.Get("/trades", s.trades)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errC := make(chan error, 1)
	go func() {
		s.log.Info("webhook server listening", zap.String("addr", s.addr))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type response struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formatted_message,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
}

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "Couldn't read request body"})
		return
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		s.writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "No data received"})
		return
	}
	s.log.Debug("alert received", zap.String("request_id", middleware.GetReqID(r.Context())), zap.String("body", text))

	msg, err := s.relay.Handle(r.Context(), text)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, response{
			Status:           "success",
			Message:          "Signal sent to Telegram",
			FormattedMessage: msg,
			Timestamp:        now(),
		})
	case errors.Is(err, signal.ErrInvalid):
		s.log.Warn("invalid alert", zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: err.Error()})
	case errors.Is(err, exit.ErrInvalidComputation):
		s.log.Error("couldn't compute exit", zap.Error(err))
		s.writeJSON(w, http.StatusUnprocessableEntity, response{Status: "error", Message: err.Error()})
	case msg != "":
		s.writeJSON(w, http.StatusInternalServerError, response{
			Status:           "error",
			Message:          "Failed to send to Telegram",
			FormattedMessage: msg,
			Timestamp:        now(),
		})
	default:
		s.log.Error("couldn't handle alert", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, response{Status: "error", Message: err.Error()})
	}
}

type healthResponse struct {
	Status       string   `json:"status"`
	ActiveTrades int      `json:"active_trades"`
	Trades       []string `json:"trades"`
	Timestamp    string   `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	trades := s.relay.Trades()
	symbols := make([]string, 0, len(trades))
	for _, t := range trades {
		symbols = append(symbols, t.Symbol)
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		ActiveTrades: len(trades),
		Trades:       symbols,
		Timestamp:    now(),
	})
}

type tradesResponse struct {
	ActiveTrades map[string]*trade.Trade `json:"active_trades"`
	Count        int                     `json:"count"`
}

func (s *Server) trades(w http.ResponseWriter, r *http.Request) {
	trades := s.relay.Trades()
	res := tradesResponse{
		ActiveTrades: make(map[string]*trade.Trade, len(trades)),
		Count:        len(trades),
	}
	for _, t := range trades {
		res.ActiveTrades[t.Symbol] = t
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("couldn't encode response", zap.Error(err))
	}
}

// logging logs every request once it has been served, at warn level for
// client errors and error level for server errors.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("ip", r.RemoteAddr),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case ww.Status() >= 500:
			s.log.Error("request served", fields...)
		case ww.Status() >= 400:
			s.log.Warn("request served", fields...)
		default:
			s.log.Info("request served", fields...)
		}
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
