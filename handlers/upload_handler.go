package handlers

import (
	"regexp"

	"github.com/anjiri1684/travel_agency/apperrors"
	"github.com/anjiri1684/travel_agency/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UploadSigner is implemented by storage.CloudinaryStore.
type UploadSigner interface {
	SignUpload(subfolder string) (*storage.UploadSignature, error)
}

type UploadHandler struct {
	base
	signer UploadSigner
}

var folderPattern = regexp.MustCompile(`^[a-z0-9_-]{0,40}$`)

// NewUploadHandler accepts a nil signer when Cloudinary is not configured.
func NewUploadHandler(signer UploadSigner, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{base: base{log: log}, signer: signer}
}

// Signature creates a secure signature for a direct browser upload of package images.
func (h *UploadHandler) Signature(c *fiber.Ctx) error {
	if h.signer == nil {
		return h.fail(c, apperrors.Config("Image uploads are not configured", fiber.StatusInternalServerError))
	}
	folder := c.Query("folder", "packages")
	if !folderPattern.MatchString(folder) {
		return h.fail(c, apperrors.Validation("Invalid upload folder"))
	}

	sig, err := h.signer.SignUpload(folder)
	if err != nil {
		return h.fail(c, apperrors.Internal("Failed to sign upload params", err))
	}
	return c.JSON(sig)
}
