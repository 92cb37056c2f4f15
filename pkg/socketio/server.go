package socketio

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	socket "github.com/zishang520/socket.io/socket"
)

// EventNotification is emitted to a learner's room for every persisted notification.
const EventNotification = "notification"

// TokenVerifier resolves a bearer token to the id of the user it was issued to.
type TokenVerifier func(token string) (userID string, err error)

// Server pushes learner events over Socket.IO. Each authenticated socket joins user:<id>.
type Server struct {
	io     *socket.Server
	verify TokenVerifier
	logger *slog.Logger

	mu        sync.RWMutex
	connected map[string]int
}

// NewServer creates a Socket.IO server that authenticates sockets with verify.
func NewServer(verify TokenVerifier, logger *slog.Logger) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(60 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetServeClient(false)
	opts.SetPath("/socket.io")

	s := &Server{
		io:        socket.NewServer(nil, opts),
		verify:    verify,
		logger:    logger,
		connected: make(map[string]int),
	}

	s.io.Use(s.authenticate)
	s.io.On("connection", func(args ...any) {
		sock, ok := args[0].(*socket.Socket)
		if !ok {
			s.logger.Error("unexpected connection payload", slog.Any("payload", args))
			return
		}
		s.handleConnection(sock)
	})

	return s
}

// Handler returns the HTTP handler to mount on /socket.io/.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// EmitToUser sends event to every socket the user has open.
func (s *Server) EmitToUser(userID, event string, payload any) error {
	if userID == "" {
		return errors.New("socketio: empty user id")
	}
	return s.io.To(UserRoom(userID)).Emit(event, payload)
}

// Online reports whether the user has at least one live socket.
func (s *Server) Online(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected[userID] > 0
}

// Close shuts down the Socket.IO server.
func (s *Server) Close() error {
	done := make(chan struct{})
	s.io.Close(func() { close(done) })
	<-done
	return nil
}

func (s *Server) authenticate(sock *socket.Socket, next func(*socket.ExtendedError)) {
	token := extractToken(sock)
	if token == "" {
		next(socket.NewExtendedError("missing authentication token", map[string]any{"code": "MISSING_TOKEN"}))
		return
	}

	userID, err := s.verify(token)
	if err != nil {
		s.logger.Warn("socket connection rejected", slog.String("error", err.Error()))
		next(socket.NewExtendedError("invalid token", map[string]any{"code": "INVALID_TOKEN"}))
		return
	}

	sock.SetData(userID)
	next(nil)
}

func (s *Server) handleConnection(sock *socket.Socket) {
	userID, _ := sock.Data().(string)
	if userID == "" {
		sock.Disconnect(true)
		return
	}

	s.mu.Lock()
	s.connected[userID]++
	s.mu.Unlock()

	sock.Join(UserRoom(userID))
	s.logger.Debug("socket connected", slog.String("userId", userID), slog.String("connId", string(sock.Id())))

	if err := sock.Emit("connectionConfirmed", map[string]any{
		"userId":    userID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		s.logger.Warn("failed to emit connection confirmation", slog.String("error", err.Error()))
	}

	sock.On("disconnect", func(...any) {
		s.mu.Lock()
		if s.connected[userID]--; s.connected[userID] <= 0 {
			delete(s.connected, userID)
		}
		s.mu.Unlock()
	})
}

func extractToken(sock *socket.Socket) string {
	if hs := sock.Handshake(); hs != nil {
		if authMap, ok := hs.Auth.(map[string]any); ok {
			if token, ok := authMap["token"].(string); ok && token != "" {
				return token
			}
		}
		if hs.Query != nil {
			if token, ok := hs.Query.Get("token"); ok && token != "" {
				return token
			}
		}
	}
	return ""
}

// UserRoom names the room a user's sockets join.
func UserRoom(userID string) socket.Room {
	return socket.Room("user:" + userID)
}
