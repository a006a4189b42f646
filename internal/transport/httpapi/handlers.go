package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
	"github.com/lueurxax/shruggbot/internal/core/reaction"
	"github.com/lueurxax/shruggbot/internal/platform/staticfiles"
)

// Error messages returned to clients.
const (
	msgTextRequired   = "Text is required."
	msgInvalidBody    = "Request body must be JSON with a text field."
	msgBodyTooLarge   = "Request body is too large."
	msgShortCircuited = "ShruggBot short-circuited."
	msgRateLimited    = "Too many shruggs. Take a breath and try again in a minute."
	msgNotFound       = "Not found."
)

const apiPrefix = "/api/"

// shruggRequest is the wire form of reaction.Request. Headline is the field
// name older clients send.
type shruggRequest struct {
	Text     string        `json:"text"`
	Headline string        `json:"headline"`
	Mode     reaction.Mode `json:"mode"`
	Tones    *shruggTones  `json:"tones"`
}

// shruggTones tells a missing slider, which gets the default level, from
// one sent as 0, which clamps to the minimum.
type shruggTones struct {
	Sarcasm   *int `json:"sarcasm"`
	Nihilism  *int `json:"nihilism"`
	Absurdity *int `json:"absurdity"`
}

func (r shruggRequest) toRequest() reaction.Request {
	req := reaction.Request{Text: r.Text, Mode: r.Mode}
	if strings.TrimSpace(req.Text) == "" {
		req.Text = r.Headline
	}

	if r.Tones != nil {
		req.Tones = reaction.Tones{
			Sarcasm:   toneLevel(r.Tones.Sarcasm),
			Nihilism:  toneLevel(r.Tones.Nihilism),
			Absurdity: toneLevel(r.Tones.Absurdity),
		}
	}

	return req
}

func toneLevel(level *int) int {
	if level == nil {
		return reaction.DefaultToneLevel
	}

	return reaction.ClampToneLevel(*level)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleShrugg(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes())

	var body shruggRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: msgBodyTooLarge})

			return
		}

		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})

		return
	}

	result, err := s.reactor.Generate(c.Request.Context(), body.toRequest())
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: msgTextRequired})

			return
		}

		s.logger.Error().
			Err(err).
			Str(logFieldRequestID, c.GetString(ctxKeyRequestID)).
			Msg("reaction generation failed")

		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgShortCircuited, Details: err.Error()})

		return
	}

	c.JSON(http.StatusOK, result)
}

func handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// handleNoRoute serves bundle assets, falls back to index.html for client
// routes and answers JSON 404s under /api/.
func (s *Server) handleNoRoute(c *gin.Context) {
	path := c.Request.URL.Path

	if strings.HasPrefix(path, apiPrefix) || s.bundle == nil ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})

		return
	}

	name, lookup := s.bundle.Lookup(path)

	switch lookup {
	case staticfiles.Found:
		c.FileFromFS(name, http.FS(s.bundle.FS()))
	case staticfiles.NotFound:
		// The file server answers a directory request with its index.html.
		c.FileFromFS("/", http.FS(s.bundle.FS()))
	}
}
