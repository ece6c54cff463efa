package handlers

import (
	"errors"
	"strings"

	"smartfarm/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// imageFieldName is the multipart field carrying an uploaded image.
const imageFieldName = "image"

// imageFromRequest resolves the image part of a create/update request. An
// uploaded file wins over imageUrl, which wins over the legacy image string.
func imageFromRequest(c *fiber.Ctx, imageURL, legacy string) (services.ImageInput, error) {
	if isMultipart(c) {
		fh, err := c.FormFile(imageFieldName)
		switch {
		case err == nil:
			return services.ImageFromUpload(fh), nil
		case !errors.Is(err, fasthttp.ErrMissingFile):
			return services.ImageInput{}, err
		}
	}
	if url := strings.TrimSpace(imageURL); url != "" {
		return services.ImageFromURL(url), nil
	}
	if url := strings.TrimSpace(legacy); url != "" {
		return services.ImageFromURL(url), nil
	}
	return services.NoImage(), nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}
