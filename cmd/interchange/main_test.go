package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/interchange/internal/config"
	"github.com/ehr/interchange/internal/platform/audit"
	"github.com/ehr/interchange/internal/platform/auth"
	"github.com/ehr/interchange/internal/platform/convert"
	"github.com/ehr/interchange/internal/platform/export"
	"github.com/ehr/interchange/internal/platform/hl7v2"
	"github.com/ehr/interchange/internal/platform/sheet"
	"github.com/ehr/interchange/internal/platform/telemetry"
)

const sampleCSV = "name,amount\nAlice,10\nBob,20\n"

const sampleHL7 = "MSH|^~\\&|LAB|HOSP|EHR|HOSP|20240101120000||ORU^R01|MSG001|P|2.5.1\r" +
	"PID|1||12345^^^MRN||Doe^John||19800115|M\r"

const testSigningKey = "0123456789abcdef0123456789abcdef"

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("AUTH_SIGNING_KEY", "")
	t.Setenv("DATABASE_URL", "")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func testConfig(key string) *config.Config {
	return &config.Config{
		Env:              "test",
		AuthSigningKey:   key,
		MaxUploadSize:    "1MiB",
		RequestTimeout:   5 * time.Second,
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
		BatchConcurrency: 2,
	}
}

func newTestServer(t *testing.T, key string) (*echo.Echo, *audit.Memory) {
	t.Helper()
	log := audit.NewMemory(10)
	metrics := telemetry.New()
	e, err := newServer(testConfig(key), serverDeps{
		Converter: convert.NewConverter(nil, zerolog.Nop()),
		Audit:     metrics.Observe(log),
		Metrics:   metrics,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return e, log
}

func token(t *testing.T, scopes ...string) string {
	t.Helper()
	tok, err := auth.IssueToken(auth.JWTConfig{SigningKey: []byte(testSigningKey)}, "tester", time.Hour, scopes...)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func serve(e *echo.Echo, method, target, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

// =========== Server Tests ===========

func TestServer_Health(t *testing.T) {
	e, _ := newTestServer(t, testSigningKey)

	rec := serve(e, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestServer_HealthDB_NoDatabase(t *testing.T) {
	e, _ := newTestServer(t, testSigningKey)

	rec := serve(e, http.MethodGet, "/health/db", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"disabled"`) {
		t.Errorf("expected database disabled, got %s", rec.Body.String())
	}
}

func TestServer_Metrics(t *testing.T) {
	e, _ := newTestServer(t, testSigningKey)

	serve(e, http.MethodPost, "/api/v1/convert", sampleCSV, token(t, auth.ScopeConvert))
	rec := serve(e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `interchange_conversions_total{format="csv",outcome="success"} 1`) {
		t.Errorf("expected csv conversion counted:\n%s", body)
	}
	if !strings.Contains(body, `route="/api/v1/convert",status_code="200"`) {
		t.Errorf("expected convert route in request metrics:\n%s", body)
	}
}

func TestServer_PublicRoutes(t *testing.T) {
	e, _ := newTestServer(t, testSigningKey)

	for _, path := range []string{"/api/v1/formats", "/api/v1/openapi.json", "/api/v1/docs"} {
		rec := serve(e, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestServer_ConvertRequiresToken(t *testing.T) {
	e, _ := newTestServer(t, testSigningKey)

	rec := serve(e, http.MethodPost, "/api/v1/convert", sampleCSV, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if errorMessage(t, rec) == "" {
		t.Error("expected error message")
	}
}

func TestServer_ConvertWithToken(t *testing.T) {
	e, log := newTestServer(t, testSigningKey)

	rec := serve(e, http.MethodPost, "/api/v1/convert?name=people.csv", sampleCSV, token(t, auth.ScopeConvert))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp convert.ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Format != "csv" || len(resp.Sheets) != 1 {
		t.Errorf("expected one csv sheet, got %s with %d sheets", resp.Format, len(resp.Sheets))
	}

	entries, _ := log.Recent(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
}

func TestServer_ConversionsRequiresAuditScope(t *testing.T) {
	e, _ := newTestServer(t, testSigningKey)

	rec := serve(e, http.MethodGet, "/api/v1/conversions", "", token(t, auth.ScopeConvert))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = serve(e, http.MethodGet, "/api/v1/conversions", "", token(t, auth.ScopeAudit))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_AuthDisabled(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := serve(e, http.MethodPost, "/api/v1/convert", sampleCSV, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_BadUploadSize(t *testing.T) {
	cfg := testConfig("")
	cfg.MaxUploadSize = "lots"
	if _, err := newServer(cfg, serverDeps{Converter: convert.NewConverter(nil, zerolog.Nop()), Audit: audit.NewMemory(1)}); err == nil {
		t.Fatal("expected error for invalid upload size")
	}
}

func TestJSONErrorHandler_NotFound(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := serve(e, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Not Found" {
		t.Errorf("expected 'Not Found', got %q", got)
	}
}

// =========== MLLP Sink Tests ===========

func TestMLLPSink_WritesAndAudits(t *testing.T) {
	msg, err := hl7v2.ParseMessage([]byte(sampleHL7))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	dir := t.TempDir()
	log := audit.NewMemory(10)

	s := sheet.New("HL7 Patients", []string{"Name"})
	s.Append("Doe, John")
	sink := mllpSink(log, dir, export.NDJSON, zerolog.Nop())
	in := hl7v2.Inbound{Message: msg, Raw: []byte(sampleHL7), Sheets: []sheet.Sheet{*s}}
	if err := sink(context.Background(), in); err != nil {
		t.Fatalf("sink: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "mllp_MSG001.ndjson")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
	entries, _ := log.Recent(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Source != "mllp:LAB" || e.Format != "hl7v2" || e.Sheets != 1 || e.Rows != 1 {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestMLLPSink_RejectsEmpty(t *testing.T) {
	msg, err := hl7v2.ParseMessage([]byte(sampleHL7))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	log := audit.NewMemory(10)

	in := hl7v2.Inbound{Message: msg, Raw: []byte(sampleHL7)}
	if err := mllpSink(log, "", export.JSON, zerolog.Nop())(context.Background(), in); err == nil {
		t.Fatal("expected error for empty conversion")
	}
	entries, _ := log.Recent(context.Background(), 10)
	if len(entries) != 1 || !entries[0].Failed() {
		t.Errorf("expected one failed entry, got %+v", entries)
	}
}

func TestMLLPSink_BatchOverListener(t *testing.T) {
	dir := t.TempDir()
	log := audit.NewMemory(10)
	l := hl7v2.NewListener("127.0.0.1:0", mllpSink(log, dir, export.NDJSON, zerolog.Nop()), zerolog.Nop())
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Close()

	conn, err := net.DialTimeout("tcp", l.Addr(), 2*time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	second := strings.Replace(sampleHL7, "MSG001", "MSG002", 1)
	batch := "BHS|^~\\&|LAB\r" + sampleHL7 + second + "BTS|2"
	if _, err := conn.Write(hl7v2.Frame([]byte(batch))); err != nil {
		t.Fatalf("Write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 0, 1024)
	chunk := make([]byte, 512)
	for bytes.Count(buf, []byte{hl7v2.EndBlock, hl7v2.FrameEnd}) < 2 {
		n, err := conn.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			t.Fatalf("reading ACKs: %v", err)
		}
	}

	for _, id := range []string{"MSG001", "MSG002"} {
		if _, err := os.Stat(filepath.Join(dir, "mllp_"+id+".ndjson")); err != nil {
			t.Errorf("expected output for %s: %v", id, err)
		}
	}
	entries, _ := log.Recent(context.Background(), 10)
	if len(entries) != 2 {
		t.Fatalf("expected one audit entry per message, got %d", len(entries))
	}
}

// =========== Parse Command Tests ===========

func TestParseCommand_WritesCSV(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	good := writeFile(t, in, "people.csv", sampleCSV)
	bad := writeFile(t, in, "empty.txt", "   ")

	stdout, stderr, err := runCLI(t, "", "parse", good, bad, "--format", "csv", "--out", out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(stderr, "error: empty.txt") {
		t.Errorf("expected error for empty.txt, got %q", stderr)
	}
	if !strings.Contains(stdout, "people.csv: csv, 1 sheet(s)") {
		t.Errorf("unexpected stdout: %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(out, "combined_parsed_data.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "name,amount\n") {
		t.Errorf("unexpected csv: %q", data)
	}
}

func TestParseCommand_SingleInputName(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	good := writeFile(t, in, "people.csv", sampleCSV)

	if _, _, err := runCLI(t, "", "parse", good, "--out", out); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "people_parsed.json")); err != nil {
		t.Errorf("expected people_parsed.json: %v", err)
	}
}

func TestParseCommand_AllFailed(t *testing.T) {
	in := t.TempDir()
	bad := writeFile(t, in, "empty.txt", "")

	_, _, err := runCLI(t, "", "parse", bad, "--out", t.TempDir())
	if err == nil {
		t.Fatal("expected error when every file fails")
	}
	if !strings.Contains(err.Error(), "empty.txt") {
		t.Errorf("expected file name in error, got %v", err)
	}
}

func TestParseCommand_TooLarge(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE", "10B")
	in := t.TempDir()
	big := writeFile(t, in, "people.csv", sampleCSV)

	_, _, err := runCLI(t, "", "parse", big, "--out", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "larger than") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestParseCommand_BadFlags(t *testing.T) {
	in := t.TempDir()
	good := writeFile(t, in, "people.csv", sampleCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"output format", []string{"parse", good, "--format", "xlsx"}},
		{"input format", []string{"parse", good, "--as", "edifact"}},
		{"no files", []string{"parse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, "", tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInputFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"auto", "", true},
		{"X12", "x12", true},
		{"hl7v2", "hl7v2", true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, err := inputFormat(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("inputFormat(%q) error = %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("inputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =========== Detect / Version Tests ===========

func TestDetectCommand(t *testing.T) {
	in := t.TempDir()
	csvFile := writeFile(t, in, "people.csv", sampleCSV)
	hl7File := writeFile(t, in, "adt.hl7", sampleHL7)
	blank := writeFile(t, in, "blank.txt", "\n\n")

	stdout, _, err := runCLI(t, "", "detect", csvFile, hl7File, blank)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := "people.csv\tcsv\nadt.hl7\thl7v2\nblank.txt\tunknown\n"
	if stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
}

func TestDetectCommand_Stdin(t *testing.T) {
	stdout, _, err := runCLI(t, sampleHL7, "detect")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if stdout != "-\thl7v2\n" {
		t.Errorf("got %q", stdout)
	}
}

func TestDetectCommand_MissingFile(t *testing.T) {
	if _, _, err := runCLI(t, "", "detect", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error when no file is readable")
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout, "interchange "+version) {
		t.Errorf("unexpected output %q", stdout)
	}
}
