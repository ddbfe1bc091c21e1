package typographysettings

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/authguard"
	apperrors "github.com/louisbranch/typeshelf/internal/services/web/platform/errors"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/lifecycle"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/weberror"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

const (
	loadEffect = "load-fonts"
	fileField  = "font"
	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 64 << 10
	maxFormMemory     = 1 << 20
)

var tracer = otel.Tracer("github.com/louisbranch/typeshelf/internal/services/web/modules/typographysettings")

type handlers struct {
	modulehandler.Base
	store   fontstore.Source
	catalog Catalog
	logger  *zap.Logger
}

func newHandlers(m Module) handlers {
	return handlers{Base: m.base, store: m.store, catalog: m.catalog, logger: m.logger}
}

func (h handlers) redirectSettingsRoot(w http.ResponseWriter, r *http.Request) {
	httpx.WriteRedirect(w, r, routepath.AppSettingsTypography)
}

func (h handlers) handleSettings(w http.ResponseWriter, r *http.Request) {
	form := webtemplates.UploaderForm{Uploaded: r.URL.Query().Get(routepath.UploadedQueryKey)}
	h.renderPage(w, r, http.StatusOK, form)
}

// renderPage is one mount of the settings page.
func (h handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, form webtemplates.UploaderForm) {
	if h.store == nil {
		h.WriteError(w, r, errStoreUnavailable)
		return
	}
	mount := lifecycle.NewMount()
	defer mount.Unmount()
	mount.Effect(loadEffect, h.store, func() func() {
		h.logger.Debug("loading fonts", zap.String("page", "typography_settings"))
		h.store.LoadFonts(r.Context())
		return nil
	})

	loc, _ := h.PageLocalizer(w, r)
	title := webtemplates.T(loc, "typography.settings.title")
	fragment := webtemplates.Group(
		webtemplates.PageHeading(title),
		authguard.Protect(h.Authorized(r), webtemplates.FontUploader(form, loc), webtemplates.SignInRequired(loc)),
	)
	h.WritePage(w, r, title, status, fragment)
}

func (h handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.WriteError(w, r, errCatalogUnavailable)
		return
	}
	userID := h.RequestUserID(r)
	if userID == "" {
		h.WriteError(w, r, errSignInRequired)
		return
	}

	ctx, span := tracer.Start(r.Context(), "typographysettings.Upload")
	defer span.End()

	data, err := readUpload(w, r)
	if err != nil {
		h.uploadFailed(w, r, span, err)
		return
	}
	meta, err := fonts.Parse(data)
	if err != nil {
		h.uploadFailed(w, r, span, err)
		return
	}
	font, err := h.catalog.PutFont(ctx, meta.Apply(fonts.Font{UploadedBy: userID}), data)
	if err != nil {
		h.uploadFailed(w, r, span, err)
		return
	}
	span.SetAttributes(
		attribute.String("font.id", font.ID),
		attribute.String("font.family", font.Family),
		attribute.Int64("font.size_bytes", font.SizeBytes),
	)
	h.logger.Info("font uploaded",
		zap.String("font_id", font.ID),
		zap.String("family", font.Family),
		zap.String("user_id", userID),
	)
	h.refresh(ctx)

	target := routepath.AppSettingsTypography + "?" + url.Values{routepath.UploadedQueryKey: {font.DisplayName()}}.Encode()
	httpx.WriteRedirect(w, r, target)
}

func (h handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.WriteError(w, r, errCatalogUnavailable)
		return
	}
	userID := h.RequestUserID(r)
	if userID == "" {
		h.WriteError(w, r, errSignInRequired)
		return
	}
	fontID := r.PathValue("fontID")
	deleted, err := h.catalog.DeleteFont(r.Context(), fontID, userID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	if !deleted {
		h.WriteError(w, r, errFontNotFound)
		return
	}
	h.logger.Info("font deleted", zap.String("font_id", fontID), zap.String("user_id", userID))
	h.refresh(r.Context())
	httpx.WriteRedirect(w, r, routepath.AppBrandTypography)
}

// refresh makes the next read of the shared store see a catalog write.
func (h handlers) refresh(ctx context.Context) {
	switch store := h.store.(type) {
	case nil:
	case fontstore.Invalidator:
		store.Invalidate(ctx)
	default:
		store.LoadFonts(ctx)
	}
}

// uploadFailed re-renders the uploader with a localized message for client
// errors and falls back to the app error page otherwise.
func (h handlers) uploadFailed(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	err = classifyUploadError(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	status := apperrors.HTTPStatus(err)
	if weberror.ShouldRenderAppError(status) {
		h.logger.Error("font upload", zap.Error(err))
		h.WriteError(w, r, err)
		return
	}
	h.logger.Debug("font upload rejected", zap.Error(err), zap.Int("status", status))
	loc, _ := h.PageLocalizer(w, r)
	h.renderPage(w, r, status, webtemplates.UploaderForm{Error: weberror.PublicMessage(loc, err)})
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, fonts.MaxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(fileField)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if header.Size > fonts.MaxFileBytes {
		return nil, fonts.ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, fonts.MaxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > fonts.MaxFileBytes {
		return nil, fonts.ErrTooLarge
	}
	return data, nil
}

func classifyUploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, fonts.ErrTooLarge):
		return apperrors.Wrap(apperrors.KindTooLarge, "error.font.too_large", err)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart), errors.Is(err, fonts.ErrEmpty):
		return apperrors.Wrap(apperrors.KindInvalidInput, "error.font.missing", err)
	case errors.Is(err, fonts.ErrNotFont):
		return apperrors.Wrap(apperrors.KindInvalidInput, "error.font.invalid", err)
	case errors.Is(err, webstorage.ErrDuplicate):
		return apperrors.Wrap(apperrors.KindConflict, "error.font.duplicate", err)
	default:
		return err
	}
}
