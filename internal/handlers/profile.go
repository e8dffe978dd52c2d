package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/metrics"
	"github.com/nfrund/kaashub/internal/middleware"
	"github.com/nfrund/kaashub/internal/rendering"
	dto "github.com/nfrund/kaashub/internal/view/dto/profile"
	"github.com/nfrund/kaashub/web/src/templates/pages"
	hxhttp "maragu.dev/gomponents-htmx/http"
)

const (
	statusSaved        = "Profile updated successfully."
	statusSaveFailed   = "Error updating profile."
	statusUserNotFound = "User not found."
	statusUploaded     = "Image uploaded! Don’t forget to save your profile."
	statusUploadFailed = "Failed to upload image."
)

// ProfileHandler serves the profile editor. The page itself sits behind
// middleware.Auth; the form posts resolve the user themselves so a vanished
// session shows up as a status line instead of a redirect.
type ProfileHandler struct {
	profiles ProfileService
	users    middleware.UserResolver
	renderer rendering.Renderer
	metrics  *metrics.Metrics
	// maxSize rejects oversized uploads before they are read.
	maxSize int64
}

func NewProfileHandler(profiles ProfileService, users middleware.UserResolver, renderer rendering.Renderer, m *metrics.Metrics, maxSize int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, users: users, renderer: renderer, metrics: m, maxSize: maxSize}
}

// ProfileGet renders the editor pre-filled from the stored row (GET /profile).
func (h *ProfileHandler) ProfileGet(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.Redirect(c, "/")
	}

	p, err := h.profiles.Load(ctx, user)
	if err != nil {
		middleware.FromContext(ctx).Error("Failed to load profile", "user_id", user.ID, "error", err)
		return h.renderer.RenderPage(c, http.StatusInternalServerError, pages.ErrorPage("Profile", profileLoadError))
	}

	return h.renderer.RenderPage(c, http.StatusOK, pages.ProfilePage(formData(user, p.FullName, p.AvatarURL)))
}

// ProfilePost saves full name and avatar URL (POST /profile).
func (h *ProfileHandler) ProfilePost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}

	user, err := h.currentUser(ctx, c)
	if err != nil {
		data := formData(nil, req.FullName, req.AvatarURL)
		data.Status, data.StatusKind = statusUserNotFound, dto.StatusError
		return h.renderForm(c, data)
	}

	data := formData(user, req.FullName, req.AvatarURL)
	err = h.profiles.Save(ctx, user.ID, req.FullName, req.AvatarURL)
	h.metrics.ProfileSaves.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("Failed to save profile", "user_id", user.ID, "error", err)
		data.Status, data.StatusKind = statusSaveFailed, dto.StatusError
		return h.renderForm(c, data)
	}

	logger.Info("Profile updated", "user_id", user.ID)
	data.Status, data.StatusKind = statusSaved, dto.StatusSuccess
	return h.renderForm(c, data)
}

// AvatarPost uploads a new avatar and puts its URL into the form without
// saving it (POST /profile/avatar). The image comes in the "avatar" part of
// the multipart form, next to the profile fields.
func (h *ProfileHandler) AvatarPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}

	user, err := h.currentUser(ctx, c)
	if err != nil {
		data := formData(nil, req.FullName, req.AvatarURL)
		data.Status, data.StatusKind = statusUserNotFound, dto.StatusError
		return h.renderForm(c, data)
	}
	data := formData(user, req.FullName, req.AvatarURL)

	file, err := c.FormFile("avatar")
	if err != nil {
		// No file chosen: nothing to do.
		return h.renderForm(c, data)
	}

	url, err := h.upload(ctx, user.ID, file)
	h.metrics.AvatarUploads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("Upload error", "user_id", user.ID, "filename", file.Filename, "error", err)
		data.Status, data.StatusKind = statusUploadFailed, dto.StatusError
		return h.renderForm(c, data)
	}

	data = formData(user, req.FullName, url)
	data.Status, data.StatusKind = statusUploaded, dto.StatusInfo
	return h.renderForm(c, data)
}

func (h *ProfileHandler) upload(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	if h.maxSize > 0 && file.Size > h.maxSize {
		return "", domain.ErrFileTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.profiles.UploadAvatar(ctx, userID, file.Filename, file.Header.Get(echo.HeaderContentType), src)
}

func (h *ProfileHandler) currentUser(ctx context.Context, c echo.Context) (*domain.User, error) {
	if user := middleware.CurrentUser(c); user != nil {
		return user, nil
	}
	token := middleware.SessionToken(c)
	if token == "" {
		return nil, domain.ErrNoSession
	}
	user, err := h.users.Current(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNoSession) {
		middleware.FromContext(ctx).Error("Failed to resolve session", "error", err)
	}
	return user, err
}

// renderForm answers htmx with the form alone and plain posts with the page.
func (h *ProfileHandler) renderForm(c echo.Context, data dto.FormData) error {
	if hxhttp.IsRequest(c.Request().Header) {
		return h.renderer.RenderPage(c, http.StatusOK, pages.ProfileForm(data))
	}
	return h.renderer.RenderPage(c, http.StatusOK, pages.ProfilePage(data))
}

// formData builds the editor state. The displayed avatar falls back to the
// provider's; the initial comes from the full name only.
func formData(user *domain.User, fullName, avatarURL string) dto.FormData {
	data := dto.FormData{
		FullName:      fullName,
		AvatarURL:     avatarURL,
		DisplayAvatar: avatarURL,
		Initial:       initial(fullName),
	}
	if user != nil {
		data.Email = user.Email
		if data.DisplayAvatar == "" {
			data.DisplayAvatar = user.Metadata.AvatarURL
		}
	}
	return data
}

func initial(fullName string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(fullName))
	if r == utf8.RuneError {
		return "U"
	}
	return string(r)
}
