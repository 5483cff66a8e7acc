package convert

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/interchange/internal/platform/audit"
	"github.com/ehr/interchange/internal/platform/auth"
	"github.com/ehr/interchange/internal/platform/batch"
	"github.com/ehr/interchange/internal/platform/detect"
	"github.com/ehr/interchange/internal/platform/sheet"
)

// Handler provides HTTP endpoints for format detection and conversion.
type Handler struct {
	converter *Converter
	runner    *batch.Runner
	log       audit.Log
	maxBytes  int64
	logger    zerolog.Logger
}

// NewHandler creates a conversion handler. Uploads larger than maxBytes are
// rejected with 413; a non-positive maxBytes disables the check.
func NewHandler(converter *Converter, runner *batch.Runner, log audit.Log, maxBytes int64, logger zerolog.Logger) *Handler {
	return &Handler{
		converter: converter,
		runner:    runner,
		log:       log,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// RegisterRoutes registers conversion endpoints on the provided route group.
//
//	POST /api/v1/convert      - Convert a raw body or multipart files to sheets
//	POST /api/v1/detect       - Detect the format of a raw body
//	GET  /api/v1/formats      - List supported formats
//	GET  /api/v1/conversions  - List recent conversions
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/convert", h.Convert, auth.RequireScope(auth.ScopeConvert))
	g.POST("/detect", h.Detect, auth.RequireScope(auth.ScopeConvert))
	g.GET("/formats", h.Formats)
	g.GET("/conversions", h.Conversions, auth.RequireScope(auth.ScopeAudit))
}

// ConvertResponse is the body of a successful conversion.
type ConvertResponse struct {
	ID     string        `json:"id"`
	Format detect.Format `json:"format,omitempty"`
	Files  int           `json:"files"`
	Sheets []sheet.Sheet `json:"sheets"`
	Errors []string      `json:"errors,omitempty"`
}

// FormatInfo describes one supported format.
type FormatInfo struct {
	Format      detect.Format `json:"format"`
	Description string        `json:"description"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// Convert handles POST /api/v1/convert. The optional "format" query
// parameter skips detection. A multipart body converts every part under
// "files" or "file"; any other body is converted as a single document
// named by the "name" query parameter.
func (h *Handler) Convert(c echo.Context) error {
	known, err := knownFormat(c.QueryParam("format"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	req := c.Request()
	if h.maxBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxBytes)
	}

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return h.convertFiles(c, known)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return readError(c, err)
	}
	name := c.QueryParam("name")
	if name == "" {
		name = "upload"
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errorJSON(c, http.StatusBadRequest, batch.ErrEmptyFile.Error())
	}

	entry := audit.NewEntry(requestID(c), name, body)
	res, err := h.converter.Convert(body, known)
	if err != nil {
		entry.Format = string(FormatOf(err))
		entry.Error = err.Error()
		h.record(c, entry)
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	entry.Format = string(res.Format)
	entry.Sheets = len(res.Sheets)
	entry.Rows = res.Rows()
	h.record(c, entry)

	return c.JSON(http.StatusOK, ConvertResponse{
		ID:     entry.ID.String(),
		Format: res.Format,
		Files:  1,
		Sheets: res.Sheets,
	})
}

func (h *Handler) convertFiles(c echo.Context, known detect.Format) error {
	form, err := c.MultipartForm()
	if err != nil {
		return readError(c, err)
	}
	headers := append(form.File["files"], form.File["file"]...)
	if len(headers) == 0 {
		return errorJSON(c, http.StatusBadRequest, "no files provided")
	}

	files := make([]batch.File, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("%s: could not read file: %v", fh.Filename, err))
		}
		files = append(files, batch.File{Name: fh.Filename, Content: content})
	}

	report := h.runner.Run(c.Request().Context(), files, known)

	rid := requestID(c)
	for i, o := range report.Outcomes {
		entry := audit.NewEntry(rid, o.Name, files[i].Content)
		entry.Format = string(o.Format)
		if o.Err != nil {
			entry.Error = o.Err.Error()
		} else {
			entry.Sheets = len(o.Sheets)
			for j := range o.Sheets {
				entry.Rows += o.Sheets[j].Len()
			}
		}
		h.record(c, entry)
	}

	if report.Failed() {
		return errorJSON(c, http.StatusBadRequest, report.Summary())
	}

	resp := ConvertResponse{
		ID:     uuid.NewString(),
		Files:  len(files),
		Sheets: report.Sheets(),
		Errors: report.Errors(),
	}
	if len(files) == 1 {
		resp.Format = report.Outcomes[0].Format
	}
	return c.JSON(http.StatusOK, resp)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Detect handles POST /api/v1/detect.
func (h *Handler) Detect(c echo.Context) error {
	req := c.Request()
	if h.maxBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxBytes)
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return readError(c, err)
	}
	format := detect.Detect(Decode(body))
	if format == detect.None {
		return errorJSON(c, http.StatusBadRequest, ErrUnrecognized.Error())
	}
	return c.JSON(http.StatusOK, FormatInfo{Format: format, Description: detect.Description[format]})
}

// Formats handles GET /api/v1/formats.
func (h *Handler) Formats(c echo.Context) error {
	out := make([]FormatInfo, 0, len(detect.Formats))
	for _, f := range detect.Formats {
		out = append(out, FormatInfo{Format: f, Description: detect.Description[f]})
	}
	return c.JSON(http.StatusOK, out)
}

// Conversions handles GET /api/v1/conversions?limit=N.
func (h *Handler) Conversions(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return errorJSON(c, http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	entries, err := h.log.Recent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list conversions")
		return errorJSON(c, http.StatusInternalServerError, "failed to list conversions")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) record(c echo.Context, e audit.Entry) {
	if err := h.log.Record(c.Request().Context(), e); err != nil {
		h.logger.Warn().Err(err).Str("request_id", e.RequestID).Str("source", e.Source).Msg("audit record failed")
	}
}

func knownFormat(s string) (detect.Format, error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return detect.None, nil
	}
	f, ok := detect.ParseFormat(s)
	if !ok {
		return detect.None, fmt.Errorf("unsupported format %q", s)
	}
	return f, nil
}

func requestID(c echo.Context) string {
	rid, _ := c.Get("request_id").(string)
	return rid
}

// readError maps body read failures: an oversize body is 413, anything
// else 400.
func readError(c echo.Context, err error) error {
	var maxErr *http.MaxBytesError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &maxErr):
		return errorJSON(c, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge:
		return errorJSON(c, http.StatusRequestEntityTooLarge, "request body too large")
	}
	return errorJSON(c, http.StatusBadRequest, "failed to read request body")
}
