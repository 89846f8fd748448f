package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	apperrors "customer-dashboard/internal/errors"
	"customer-dashboard/internal/models"
	"customer-dashboard/internal/observability"
	"customer-dashboard/internal/services"
)

var statusTemplate = template.Must(template.New("status").Parse(`
<div id="filter-status">
{{if .Error}}<p class="validation-error">{{.Error}}</p>
{{else}}<p class="rows">{{.Rows}} orders between {{.Start}} and {{.End}}</p>
{{range .Warnings}}<p class="warning">{{.}}</p>
{{end}}{{end}}</div>`))

type statusView struct {
	Error    string
	Rows     int
	Start    string
	End      string
	Warnings []string
}

// chartSignals are the Datastar signals the page's charts bind to.
type chartSignals struct {
	RegionData  []models.RegionShare    `json:"regionData"`
	MonthlyData []models.MonthlyRevenue `json:"monthlyData"`
	GenderData  models.GenderSeries     `json:"genderData"`
	TenureData  []models.TenurePoint    `json:"tenureData"`
	AgeData     []models.AgeBandRevenue `json:"ageData"`
	Rows        int                     `json:"rows"`
}

type SSEHandlers struct {
	analytics *services.Analytics
	parser    *FilterParser
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, parser *FilterParser, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		parser:    parser,
		logger:    logger,
	}
}

func renderStatus(v statusView) (string, error) {
	var buf strings.Builder
	err := statusTemplate.Execute(&buf, v)
	return strings.TrimSpace(buf.String()), err
}

// HandleRefreshAll recomputes every chart for the filter signals sent by the
// page. An invalid selection patches a validation message and leaves the
// chart signals untouched.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var q FilterQuery
	if err := datastar.ReadSignals(r, &q); err != nil {
		apperrors.WriteError(w, h.logger, apperrors.BadRequest("malformed signals"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	d, err := h.recompute(r, q)
	if err != nil {
		h.logger.Warn("recompute skipped", "error", err, "request_id", requestID)
		h.patchStatus(sse, statusView{Error: userMessage(err)})
		return
	}

	signals, err := json.Marshal(chartSignals{
		RegionData:  d.RegionShares,
		MonthlyData: d.MonthlyRevenue,
		GenderData:  d.CategoryGender,
		TenureData:  d.TenureScatter,
		AgeData:     d.AgeBands,
		Rows:        d.Rows,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err, "request_id", requestID)
		h.patchStatus(sse, statusView{Error: "charts could not be updated, please retry"})
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch signals", "error", err, "request_id", requestID)
		return
	}

	h.patchStatus(sse, statusView{
		Rows:     d.Rows,
		Start:    d.Start.Format(dateLayout),
		End:      d.End.Format(dateLayout),
		Warnings: d.Warnings,
	})

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) recompute(r *http.Request, q FilterQuery) (models.Dashboard, error) {
	params, err := h.parser.Params(q)
	if err != nil {
		return models.Dashboard{}, err
	}
	return h.analytics.Dashboard(r.Context(), params)
}

func (h *SSEHandlers) patchStatus(sse *datastar.ServerSentEventGenerator, v statusView) {
	html, err := renderStatus(v)
	if err != nil {
		h.logger.Error("render status", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch status", "error", err)
	}
}
