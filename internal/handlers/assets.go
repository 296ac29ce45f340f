package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/assets"
	"github.com/localnerve/jurados-presence/internal/utils"
	"go.uber.org/zap"
)

// AssetHandler serves image blobs referenced by record asset fields
type AssetHandler struct {
	Resolver *assets.Resolver
	Log      *zap.Logger
}

// GetAsset handles GET /api/assets/:record/:field
// @Summary Get an image
// @Description Streams the blob referenced by a record's asset field
// @Tags Assets
// @Produce image/jpeg
// @Param record path string true "Record ID"
// @Param field path string true "Asset field name"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /assets/{record}/{field} [get]
func (h *AssetHandler) GetAsset(c *fiber.Ctx) error {
	recordID, field := c.Params("record"), c.Params("field")

	asset, body, err := h.Resolver.Open(c.UserContext(), recordID, field)
	if errors.Is(err, assets.ErrNotFound) {
		return utils.NotFoundResponse(c, "Asset not found")
	}
	if err != nil {
		h.Log.Error("open asset failed", zap.String("record_id", recordID), zap.String("field", field), zap.Error(err))
		return utils.ErrorResponse(c, "Unable to load asset", fiber.StatusInternalServerError, "getAsset")
	}

	c.Set(fiber.HeaderContentType, asset.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	size := -1
	if asset.Size > 0 {
		size = int(asset.Size)
	}
	return c.Status(fiber.StatusOK).SendStream(body, size)
}
