package ui

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"viradsbench/app"
	"viradsbench/domain/analysis"
)

// ReportConfig holds report application configuration.
type ReportConfig struct {
	Port string
}

// ReportApp is a read-only web view over the current analysis. It
// builds a markdown summary and serves it rendered to HTML, or raw
// at /report.md for pasting into study documents.
type ReportApp struct {
	router  *chi.Mux
	service *app.AnalysisService
}

// NewReportApp creates the report application.
func NewReportApp(service *app.AnalysisService) *ReportApp {
	a := &ReportApp{
		router:  chi.NewRouter(),
		service: service,
	}

	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	a.router.Get("/", a.handleReport)
	a.router.Get("/report.md", a.handleReportMarkdown)
	return a
}

// Start runs the report server on the given address.
func (a *ReportApp) Start(addr string) error {
	log.Printf("Starting report app on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Handler exposes the router for testing.
func (a *ReportApp) Handler() http.Handler {
	return a.router
}

func (a *ReportApp) buildReport(r *http.Request) (string, error) {
	params := analysis.DefaultParams()
	group, err := a.service.Recompute(r.Context(), params)
	if err != nil {
		return "", err
	}
	timing, err := a.service.Timing(r.Context(), params)
	if err != nil {
		return "", err
	}
	return renderMarkdown(*group, *timing), nil
}

func (a *ReportApp) handleReport(w http.ResponseWriter, r *http.Request) {
	md, err := a.buildReport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(markdown.ToHTML([]byte(md), p, renderer))
}

func (a *ReportApp) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	md, err := a.buildReport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

// renderMarkdown builds the study summary document.
func renderMarkdown(group analysis.GroupSummary, timing analysis.TimingSummary) string {
	var b strings.Builder

	b.WriteString("# Reading Study Summary\n\n")
	fmt.Fprintf(&b, "Cutoff %d, prevalence %.2f, partial subset %d%%.\n\n",
		group.Params.Cutoff, group.Params.Prevalence, group.Params.PartialPercentage)

	b.WriteString("## Group\n\n")
	fmt.Fprintf(&b, "- Readers with data: %d\n", group.ReaderCount)
	fmt.Fprintf(&b, "- Mean sensitivity: %.3f\n", group.AverageMetrics.Sensitivity)
	fmt.Fprintf(&b, "- Mean specificity: %.3f\n", group.AverageMetrics.Specificity)
	fmt.Fprintf(&b, "- Mean PPV: %.3f\n", group.AverageMetrics.PPV)
	fmt.Fprintf(&b, "- Mean NPV: %.3f\n", group.AverageMetrics.NPV)
	fmt.Fprintf(&b, "- Mean AUC: %.3f\n\n", group.AverageAUC)

	b.WriteString("## Readers\n\n")
	b.WriteString("| Reader | Experience | Cases | Sens | Spec | PPV | NPV | AUC | p (Sens) | p (Spec) |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
	for _, r := range group.Readers {
		fmt.Fprintf(&b, "| %s | %s | %d | %.3f | %.3f | %.3f | %.3f | %.3f | %s | %s |\n",
			r.ReaderName, r.Experience, r.EvaluatedCount,
			r.FinalMetrics.Sensitivity, r.FinalMetrics.Specificity,
			r.FinalMetrics.PPV, r.FinalMetrics.NPV, r.FinalAUC,
			formatP(r.PValueSensitivity), formatP(r.PValueSpecificity))
	}
	b.WriteString("\n")

	b.WriteString("## Timing\n\n")
	b.WriteString("| Reader | Cases | Mean | Median | Total |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range timing.Readers {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
			r.ReaderID, r.EvaluatedCount,
			formatDuration(r.MeanTimePerCase), formatDuration(r.MedianTime), formatDuration(r.TotalTime))
	}
	b.WriteString("\n")

	writeTest(&b, "Learning curve (early vs late)", timing.LearningCurveTest)
	writeTest(&b, "Paired reader comparison", timing.PairedReaderTest)
	writeTest(&b, "Residents vs attendings", timing.ExperienceGroupTest)

	return b.String()
}

func writeTest(b *strings.Builder, label string, res *analysis.TestResult) {
	if res == nil {
		fmt.Fprintf(b, "- %s: not enough data\n", label)
		return
	}
	stat := "+Inf"
	if !math.IsInf(res.Statistic, 0) {
		stat = fmt.Sprintf("%.3f", res.Statistic)
	} else if res.Statistic < 0 {
		stat = "-Inf"
	}
	fmt.Fprintf(b, "- %s: t = %s (df %.0f), p = %s\n", label, stat, res.DegreesOfFreedom, formatP(res.PValue))
}

func formatP(p float64) string {
	if p < 0.001 {
		return "< 0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
