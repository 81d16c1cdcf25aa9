package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"time"

	"memoryvault/core"
	"memoryvault/database"
	"memoryvault/version"

	"github.com/gin-gonic/gin"
)

// HealthCheck health endpoint
func (h *Handler) HealthCheck(c *gin.Context) {
	dbHealthy := database.Ping(c.Request.Context(), h.db)

	health := gin.H{
		"status":     "healthy",
		"timestamp":  h.now().Unix(),
		"db_healthy": dbHealthy,
		"version":    version.GetFullVersion(),
		"music":      h.musicKind,
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func promLabelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// GetPrometheusMetrics writes build, storage, error log and runtime metrics in the
// Prometheus text exposition format.
func (h *Handler) GetPrometheusMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var buf bytes.Buffer

	buf.WriteString("# HELP memoryvault_build_info Build information.\n")
	buf.WriteString("# TYPE memoryvault_build_info gauge\n")
	fmt.Fprintf(
		&buf,
		"memoryvault_build_info{version=\"%s\",commit=\"%s\",build_time=\"%s\"} 1\n",
		promLabelEscape(version.Version),
		promLabelEscape(version.CommitHash),
		promLabelEscape(version.BuildTime),
	)

	buf.WriteString("# HELP memoryvault_db_up Database connectivity (1=up, 0=down).\n")
	buf.WriteString("# TYPE memoryvault_db_up gauge\n")
	if database.Ping(c.Request.Context(), h.db) {
		buf.WriteString("memoryvault_db_up 1\n")
	} else {
		buf.WriteString("memoryvault_db_up 0\n")
	}

	buf.WriteString("# HELP memoryvault_db_query_errors_total Total failed database queries.\n")
	buf.WriteString("# TYPE memoryvault_db_query_errors_total counter\n")
	fmt.Fprintf(&buf, "memoryvault_db_query_errors_total %d\n", database.QueryErrorsTotal())

	buf.WriteString("# HELP memoryvault_sqlite_busy_errors_total Total SQLite busy errors observed.\n")
	buf.WriteString("# TYPE memoryvault_sqlite_busy_errors_total counter\n")
	fmt.Fprintf(&buf, "memoryvault_sqlite_busy_errors_total %d\n", database.SQLiteBusyErrorsTotal())

	buf.WriteString("# HELP memoryvault_sqlite_locked_errors_total Total SQLite locked errors observed.\n")
	buf.WriteString("# TYPE memoryvault_sqlite_locked_errors_total counter\n")
	fmt.Fprintf(&buf, "memoryvault_sqlite_locked_errors_total %d\n", database.SQLiteLockedErrorsTotal())

	buf.WriteString("# HELP memoryvault_error_log_entries_total Error log entries recorded, by level.\n")
	buf.WriteString("# TYPE memoryvault_error_log_entries_total counter\n")
	totals := core.ErrorLoggerInstance.Totals()
	levels := make([]string, 0, len(totals))
	for level := range totals {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Fprintf(&buf, "memoryvault_error_log_entries_total{level=\"%s\"} %d\n", promLabelEscape(level), totals[level])
	}

	buf.WriteString("# HELP memoryvault_goroutines Number of goroutines.\n")
	buf.WriteString("# TYPE memoryvault_goroutines gauge\n")
	fmt.Fprintf(&buf, "memoryvault_goroutines %d\n", runtime.NumGoroutine())

	buf.WriteString("# HELP memoryvault_memory_alloc_bytes Bytes of allocated heap objects.\n")
	buf.WriteString("# TYPE memoryvault_memory_alloc_bytes gauge\n")
	fmt.Fprintf(&buf, "memoryvault_memory_alloc_bytes %d\n", mem.Alloc)

	buf.WriteString("# HELP memoryvault_memory_sys_bytes Bytes of memory obtained from the OS.\n")
	buf.WriteString("# TYPE memoryvault_memory_sys_bytes gauge\n")
	fmt.Fprintf(&buf, "memoryvault_memory_sys_bytes %d\n", mem.Sys)

	buf.WriteString("# HELP memoryvault_gc_runs_total Completed GC cycles.\n")
	buf.WriteString("# TYPE memoryvault_gc_runs_total counter\n")
	fmt.Fprintf(&buf, "memoryvault_gc_runs_total %d\n", mem.NumGC)

	buf.WriteString("# HELP memoryvault_scrape_timestamp_seconds Unix time of this scrape.\n")
	buf.WriteString("# TYPE memoryvault_scrape_timestamp_seconds gauge\n")
	fmt.Fprintf(&buf, "memoryvault_scrape_timestamp_seconds %d\n", time.Now().Unix())

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}
