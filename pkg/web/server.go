// Package web serves an image set over HTTP and streams its changes over a
// WebSocket.
package web

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/eyes"
	"github.com/teslashibe/go-eyes/pkg/hub"
	"github.com/teslashibe/go-eyes/pkg/imageio"
	"github.com/teslashibe/go-eyes/pkg/protocol"
)

// Server exposes one image set. A Set is not safe for concurrent use, so
// every handler holds mu while it touches the set.
type Server struct {
	app  *fiber.App
	port string

	mu  sync.Mutex
	set *eyes.Set

	// Hub for set change events
	events *hub.Hub
	stop   context.CancelFunc

	// JPEGQuality is used when an image is requested as JPEG.
	JPEGQuality int
}

// NewServer creates a server around set. The server does not take
// ownership of set; the caller closes it after Shutdown.
func NewServer(set *eyes.Set, port string) *Server {
	s := &Server{
		port:        port,
		set:         set,
		events:      hub.New("events"),
		JPEGQuality: imageio.DefaultJPEGQuality,
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-eyes",
		DisableStartupMessage: true,
		BodyLimit:             imageio.MaxDownloadSize,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/images", s.handleListImages)
	api.Get("/images/:key", s.handleGetImage)
	api.Post("/images", s.handleAddImage)
	api.Delete("/images/:key", s.handleRemoveImage)
	api.Post("/pipeline", s.handlePipeline)
	api.Post("/reset", s.handleReset)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the event hub and serves until Shutdown is called or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.stop = cancel
	s.mu.Unlock()
	go s.events.Run(hubCtx)

	log.Info("web server listening", "url", "http://localhost:"+s.port)
	err := s.app.Listen(":" + s.port)
	cancel()
	return err
}

// Shutdown stops the event hub and the HTTP server.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.stop != nil {
		s.stop()
	}
	s.mu.Unlock()
	return s.app.Shutdown()
}

// broadcast sends msg to every event subscriber.
func (s *Server) broadcast(msg *protocol.Message, err error) {
	if err == nil {
		err = s.events.Broadcast(msg)
	}
	if err != nil {
		log.Warn("event broadcast failed", "error", err)
	}
}

// describe returns the current shapes. Callers hold mu.
func (s *Server) describe() []eyes.ImageInfo {
	infos, err := s.set.Describe()
	if err != nil {
		return nil
	}
	return infos
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, eyes.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, imageio.ErrEncode), errors.Is(err, eyes.ErrEmptyResult):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}
