package web

import (
	"io"
	"net/url"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/eyes"
	"github.com/teslashibe/go-eyes/pkg/hub"
	"github.com/teslashibe/go-eyes/pkg/imageio"
	"github.com/teslashibe/go-eyes/pkg/pipeline"
	"github.com/teslashibe/go-eyes/pkg/protocol"
)

// ImagesResponse is the body of GET /api/images.
type ImagesResponse struct {
	Images []eyes.ImageInfo `json:"images"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(ErrorResponse{Error: err.Error()})
}

// keyParam decodes the :key route parameter.
func keyParam(c *fiber.Ctx) (eyes.Key, error) {
	raw, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return eyes.Key{}, err
	}
	return eyes.ParseKey(raw), nil
}

// keysQuery parses ?keys=a,b into a selection.
func keysQuery(c *fiber.Ctx) []eyes.Key {
	raw := c.Query("keys")
	if raw == "" {
		return nil
	}
	return eyes.ParseKeys(strings.Split(raw, ","))
}

// handleListImages returns every key with its current shape
func (s *Server) handleListImages(c *fiber.Ctx) error {
	s.mu.Lock()
	infos := s.describe()
	s.mu.Unlock()

	if infos == nil {
		infos = []eyes.ImageInfo{}
	}
	return c.JSON(ImagesResponse{Images: infos})
}

// handleGetImage returns the working copy of one image, encoded as
// ?format=png (default) or jpg.
func (s *Server) handleGetImage(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return fail(c, err)
	}
	format := imageio.NormalizeFormat(c.Query("format", imageio.FormatPNG))

	s.mu.Lock()
	img, err := s.set.Get(key)
	s.mu.Unlock()
	defer img.Close()
	if err != nil {
		return fail(c, err)
	}

	if format != imageio.FormatPNG && format != imageio.FormatJPEG {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unsupported format " + format})
	}
	data, err := imageio.EncodeQuality(format, img, s.JPEGQuality)
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, imageio.ContentType(format))
	return c.Send(data)
}

// handleAddImage decodes a multipart "image" field and stores it under the
// "name" field, or a generated name when none is given.
func (s *Server) handleAddImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "missing image field"})
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return fail(c, err)
	}

	img, err := imageio.Decode(data)
	defer img.Close()
	if err != nil {
		return fail(c, err)
	}

	// FormValue aliases the pooled request buffer; the key outlives it.
	name := utils.CopyString(c.FormValue("name"))
	if name == "" {
		name = uuid.NewString()
	}
	key := eyes.ParseKey(name)

	s.mu.Lock()
	s.set.AddNamed(eyes.Named{Key: key, Image: img})
	s.mu.Unlock()

	info := eyes.ImageInfo{Key: key, Shape: eyes.ShapeOf(img)}
	log.Info("image uploaded", "key", key.String(), "shape", info.Shape.String())
	s.broadcast(protocol.NewAddedMessage(info))

	return c.Status(fiber.StatusCreated).JSON(info)
}

// handleRemoveImage stops tracking one image
func (s *Server) handleRemoveImage(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return fail(c, err)
	}

	s.mu.Lock()
	err = s.set.Remove(key)
	s.mu.Unlock()
	if err != nil {
		return fail(c, err)
	}

	s.broadcast(protocol.NewRemovedMessage(key))
	return c.SendStatus(fiber.StatusNoContent)
}

// handlePipeline applies a YAML or JSON pipeline body to the set
func (s *Server) handlePipeline(c *fiber.Ctx) error {
	p, err := pipeline.Parse(c.Body())
	if err != nil {
		return fail(c, err)
	}

	ops := strings.Split(p.String(), ",")

	s.mu.Lock()
	err = p.Apply(s.set)
	infos := s.describe()
	s.mu.Unlock()

	if err != nil {
		log.Warn("pipeline failed", "ops", p.String(), "error", err)
		s.broadcast(protocol.NewErrorMessage("pipeline", err))
		return fail(c, err)
	}

	log.Info("pipeline applied", "ops", p.String(), "images", len(infos))
	s.broadcast(protocol.NewAppliedMessage(ops, infos))
	return c.JSON(ImagesResponse{Images: infos})
}

// handleReset restores ?keys=a,b, or every image, to its original
func (s *Server) handleReset(c *fiber.Ctx) error {
	keys := keysQuery(c)

	s.mu.Lock()
	err := s.set.Reset(keys...)
	if err == nil && len(keys) == 0 {
		keys = s.set.Keys()
	}
	infos := s.describe()
	s.mu.Unlock()

	if err != nil {
		return fail(c, err)
	}

	s.broadcast(protocol.NewResetMessage(keys...))
	return c.JSON(ImagesResponse{Images: infos})
}

// handleEventsWS streams set changes, starting with a snapshot. The snapshot
// is queued ahead of registration while mu is held, so no mutation can slip
// between the snapshot and the first broadcast the client receives.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	s.mu.Lock()
	snapshot, err := protocol.NewImagesMessage(s.describe())
	if err != nil {
		s.mu.Unlock()
		log.Warn("snapshot failed", "error", err)
		return
	}
	client := hub.NewClient(s.events, c, snapshot)
	s.mu.Unlock()

	client.Run()
}
