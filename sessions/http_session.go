package sessions

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Desarso/voicechat/models"
	"github.com/gin-gonic/gin"
)

// ServeVoiceChat reads the multipart form (audio file + messages field),
// runs the exchange and writes either the response or {"detail": ...}.
func (s *HTTPSession) ServeVoiceChat(c *gin.Context) {
	if s.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxUploadSize)
	}

	audio, err := readAudio(c)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.Logger.Printf("Upload exceeds %d bytes", tooLarge.Limit)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Audio file too large"})
		return
	}
	if err != nil {
		// Missing or unreadable upload: the handler rejects empty audio as a bad request.
		s.Logger.Printf("No usable audio part: %v", err)
	}
	messages := c.DefaultPostForm("messages", "[]")

	s.Logger.Printf("Voice chat request: audio %s (%s, %d bytes)", audio.FilenameOrDefault(), audio.ContentTypeOrDefault(), len(audio.Data))

	resp, err := s.Handler.HandleVoiceChat(c.Request.Context(), audio, messages)
	if err != nil {
		status := models.StatusCode(err)
		s.Logger.Printf("Voice chat failed with %d: %v", status, err)
		c.JSON(status, models.ErrorResponse{Detail: models.PublicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// readAudio loads the "audio" form file into memory.
func readAudio(c *gin.Context) (models.AudioInput, error) {
	fh, err := c.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return models.AudioInput{}, err
		}
		return models.AudioInput{}, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	f, err := fh.Open()
	if err != nil {
		return models.AudioInput{}, fmt.Errorf("failed to open audio part: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.AudioInput{}, fmt.Errorf("failed to read audio part: %w", err)
	}

	return models.AudioInput{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, nil
}
