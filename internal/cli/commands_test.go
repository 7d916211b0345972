package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/n8n"
)

// setupEnv isolates the config home and clears credentials from the
// environment.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("N8N_HOME", home)
	for _, key := range config.Keys() {
		t.Setenv("N8N_"+strings.ToUpper(key), "")
	}
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

// resetFlags restores every flag in the tree to its default so package
// level flag variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeRecord(t *testing.T, dir, file, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

const (
	slackRecord = `{"name":"n8n-nodes-base.slack","displayName":"Slack","description":"Consume Slack API","properties":[{"name":"resource","type":"options"}]}`
	agentRecord = `{"name":"@n8n/n8n-nodes-langchain.agent","displayName":"AI Agent","description":"Generates an action plan","properties":[{"name":"text","type":"string"}]}`
)

func newNodesServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/types/nodes.json", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(n8n.APIKeyHeader); got != "key-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[` + slackRecord + `,{"name":"n8n-nodes-base.noProps"}]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionShort(t *testing.T) {
	setupEnv(t)
	buildVersion = "1.2.3"

	out, err := execute(t, "", "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q, want %q", out, "1.2.3")
	}
}

func TestConfigListMasksSecrets(t *testing.T) {
	setupEnv(t)

	if _, err := execute(t, "", "config", "set", "api_key", "supersecret1234"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := execute(t, "", "config", "list")
	if err != nil {
		t.Fatalf("config list: %v", err)
	}
	if strings.Contains(out, "supersecret1234") {
		t.Errorf("config list leaked the API key:\n%s", out)
	}
	if !strings.Contains(out, "****1234") {
		t.Errorf("config list = %q, want masked key", out)
	}
}

func TestFetchWritesRecordsThenReuses(t *testing.T) {
	setupEnv(t)
	t.Setenv("N8N_API_KEY", "key-123")
	srv := newNodesServer(t)
	output := t.TempDir()

	out, err := execute(t, "", "--base-url", srv.URL, "--output", output, "fetch", "--refetch")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(out, "created: 1") || !strings.Contains(out, "skipped: 1") {
		t.Errorf("fetch output = %q, want one created and one skipped", out)
	}
	if _, err := os.Stat(filepath.Join(output, "nodes", "slack.json")); err != nil {
		t.Fatalf("slack.json not written: %v", err)
	}

	// Enter at the prompt keeps the existing records.
	out, err = execute(t, "\n", "--base-url", srv.URL, "--output", output, "fetch")
	if err != nil {
		t.Fatalf("fetch (reuse): %v", err)
	}
	if !strings.Contains(out, "Using 1 existing records") {
		t.Errorf("fetch output = %q, want reuse message", out)
	}
}

func TestFetchRequiresAPIKey(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "", "--base-url", "http://127.0.0.1:1", "--output", t.TempDir(), "fetch")
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Errorf("fetch error = %v, want ErrMissingCredential", err)
	}
}

func TestInstallRequiresToken(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "", "--base-url", "http://127.0.0.1:1", "install", "n8n-nodes-foo")
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Errorf("install error = %v, want ErrMissingCredential", err)
	}
	if err == nil || !strings.Contains(err.Error(), "N8N_JWT_TOKEN") {
		t.Errorf("install error = %v, want it to name N8N_JWT_TOKEN", err)
	}
}

func TestInstallReportsFailuresAndCounts(t *testing.T) {
	setupEnv(t)
	t.Setenv("N8N_JWT_TOKEN", "jwt")
	output := t.TempDir()

	nodes := 10
	r := chi.NewRouter()
	r.Get("/types/nodes.json", func(w http.ResponseWriter, r *http.Request) {
		items := make([]string, nodes)
		for i := range items {
			items[i] = `{"name":"n"}`
		}
		w.Write([]byte("[" + strings.Join(items, ",") + "]"))
	})
	r.Post("/rest/community-packages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] == "n8n-nodes-bad" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		nodes += 2
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/rest/community-packages/install", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	out, err := execute(t, "", "--base-url", srv.URL, "--output", output, "install", "n8n-nodes-good", "n8n-nodes-bad")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if !strings.Contains(out, "Installed 1/2 packages, 1 failed") {
		t.Errorf("install output = %q", out)
	}
	if !strings.Contains(out, "Node types: 10 -> 12 (+2)") {
		t.Errorf("install output = %q, want node count change", out)
	}

	data, err := os.ReadFile(filepath.Join(output, installReportFile))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var report harvest.InstallReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Package != "n8n-nodes-bad" {
		t.Errorf("report.Failed = %+v, want n8n-nodes-bad", report.Failed)
	}
}

func TestExportWritesNodeInfo(t *testing.T) {
	setupEnv(t)
	output := t.TempDir()
	nodes := filepath.Join(output, "nodes")
	writeRecord(t, nodes, "slack.json", slackRecord)
	csvPath := filepath.Join(output, "node_info.csv")

	if _, err := execute(t, "", "--output", output, "export", "--csv", csvPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(output, nodeInfoFile))
	if err != nil {
		t.Fatalf("node_info.json not written: %v", err)
	}
	var infos []harvest.NodeInfo
	if err := json.Unmarshal(data, &infos); err != nil {
		t.Fatalf("decoding node_info.json: %v", err)
	}
	if len(infos) != 1 || infos[0].DisplayName != "Slack" {
		t.Errorf("node_info = %+v, want one Slack entry", infos)
	}
	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("CSV not written: %v", err)
	}
}

func TestDedupDryRunKeepsFiles(t *testing.T) {
	setupEnv(t)
	keep := t.TempDir()
	prune := t.TempDir()
	writeRecord(t, keep, "slack.json", slackRecord)
	writeRecord(t, prune, "Slack_schema.json", slackRecord)
	writeRecord(t, prune, "agent.json", agentRecord)

	out, err := execute(t, "", "dedup", "--dry-run", keep, prune)
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	if !strings.Contains(out, "1 duplicates would be removed") {
		t.Errorf("dedup output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(prune, "Slack_schema.json")); err != nil {
		t.Errorf("dry run removed a file: %v", err)
	}

	if _, err := execute(t, "", "dedup", keep, prune); err != nil {
		t.Fatalf("dedup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(prune, "Slack_schema.json")); !os.IsNotExist(err) {
		t.Errorf("duplicate still present in prune dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(keep, "slack.json")); err != nil {
		t.Errorf("keep dir was modified: %v", err)
	}
}

func TestLookupExactMatch(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeRecord(t, dir, "slack.json", slackRecord)
	writeRecord(t, dir, "agent.json", agentRecord)

	out, err := execute(t, "", "lookup", "--dir", dir, "slack")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !strings.Contains(out, "n8n-nodes-base.slack") || !strings.Contains(out, "exact") {
		t.Errorf("lookup output = %q, want exact slack match", out)
	}

	if _, err := execute(t, "", "lookup", "--dir", dir, "nothing like it"); err == nil {
		t.Error("lookup with no match should fail")
	}
}

func TestAnalyzeWritesYAMLReport(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeRecord(t, dir, "slack.json", slackRecord)
	writeRecord(t, dir, "agent.json", agentRecord)
	path := filepath.Join(t.TempDir(), "report.yaml")

	out, err := execute(t, "", "analyze", "--format", "yaml", "--out", path, dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Analysed 2 records") {
		t.Errorf("analyze output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "langchain: 1") {
		t.Errorf("report = %s, want one LangChain node", data)
	}

	if _, err := execute(t, "", "analyze", "--format", "xml", dir); err == nil {
		t.Error("analyze --format xml should fail")
	}
}

func TestValidateReportsInvalidRecords(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeRecord(t, dir, "slack.json", slackRecord)

	out, err := execute(t, "", "validate", dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "1/1 records valid") {
		t.Errorf("validate output = %q", out)
	}

	writeRecord(t, dir, "broken.json", `{"displayName":"No name","properties":{}}`)
	out, err = execute(t, "", "validate", dir)
	if err == nil {
		t.Fatal("validate should fail when a record is invalid")
	}
	if !strings.Contains(out, "broken.json") {
		t.Errorf("validate output = %q, want broken.json listed", out)
	}
}

func TestIndexBuildAndQuery(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeRecord(t, dir, "slack.json", slackRecord)
	writeRecord(t, dir, "agent.json", agentRecord)
	db := filepath.Join(t.TempDir(), "catalogue.db")

	out, err := execute(t, "", "index", "build", "--db", db, dir)
	if err != nil {
		t.Fatalf("index build: %v", err)
	}
	if !strings.Contains(out, "Indexed 2 records") {
		t.Errorf("index build output = %q", out)
	}

	out, err = execute(t, "", "index", "query", "--db", db, "--json", "plan")
	if err != nil {
		t.Fatalf("index query: %v", err)
	}
	var rows []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decoding rows: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Name != "@n8n/n8n-nodes-langchain.agent" {
		t.Errorf("rows = %+v, want the agent node", rows)
	}

	if _, err := execute(t, "", "index", "query", "--db", filepath.Join(t.TempDir(), "none.db"), "x"); err == nil {
		t.Error("index query without a catalogue should fail")
	}
}
