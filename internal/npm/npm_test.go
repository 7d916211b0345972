package npm

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type tarEntry struct {
	name string
	body string
}

// createTestTarGz builds an npm-style tarball with every entry under package/.
func createTestTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     0644,
			Size:     int64(len(e.body)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	tw.Close()
	gw.Close()
	return buf.Bytes()
}

func integrityOf(data []byte) string {
	sum := sha512.Sum512(data)
	return "sha512-" + base64.StdEncoding.EncodeToString(sum[:])
}

var sampleEntries = []tarEntry{
	{"package/package.json", `{"name":"n8n-nodes-demo","version":"1.2.0"}`},
	{"package/dist/nodes/Demo/Demo.node.js", "module.exports = {};"},
	{"package/nodes/Demo/Demo.node.ts", "export class Demo {}"},
	{"package/credentials/DemoApi.credentials.ts", "export class DemoApi {}"},
	{"package/nodes/Demo/helpers.ts", "export const x = 1;"},
	{"package/nodes/Demo/Demo.node.json", `{"node":"n8n-nodes-demo.demo"}`},
}

// fakeRegistry serves packuments for the named packages plus their tarballs.
// Packages listed in broken get a tarball that fails its integrity check.
func fakeRegistry(t *testing.T, tarball []byte, broken ...string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasSuffix(path, ".tgz") {
			w.Write(tarball)
			return
		}
		if path == "missing" {
			http.NotFound(w, r)
			return
		}
		integrity := integrityOf(tarball)
		for _, b := range broken {
			if b == path {
				integrity = integrityOf([]byte("something else"))
			}
		}
		doc := map[string]any{
			"name":        path,
			"description": "demo package",
			"dist-tags":   map[string]string{"latest": "1.2.0", "next": "2.0.0-beta.1"},
			"versions": map[string]any{
				"1.0.0":        map[string]any{"version": "1.0.0", "dist": map[string]string{"tarball": srv.URL + "/" + path + "-1.0.0.tgz"}},
				"1.2.0":        map[string]any{"version": "1.2.0", "dist": map[string]string{"tarball": srv.URL + "/" + path + "-1.2.0.tgz", "integrity": integrity}, "n8n": map[string]any{"n8nNodesApiVersion": 1, "nodes": []string{"dist/nodes/Demo/Demo.node.js"}}},
				"2.0.0-beta.1": map[string]any{"version": "2.0.0-beta.1", "dist": map[string]string{}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(srv.URL, WithHTTPClient(srv.Client()), WithRetries(1), WithBackoff(time.Millisecond))
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"n8n-nodes-demo", "n8n-nodes-demo"},
		{"@n8n/n8n-nodes-langchain", "n8n_n8n-nodes-langchain"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	in := []SearchResult{
		{Name: "a", Score: 1},
		{Name: "b", Score: 2},
		{Name: "a", Score: 3},
		{Name: ""},
	}
	got := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("Dedupe() returned %d results, want 2", len(got))
	}
	if got[0].Name != "a" || got[0].Score != 1 {
		t.Errorf("Dedupe()[0] = %+v, want first occurrence of a", got[0])
	}
}

func TestIsN8nPackage(t *testing.T) {
	tests := []struct {
		name string
		r    SearchResult
		want bool
	}{
		{"keyword", SearchResult{Name: "x", Keywords: []string{CommunityKeyword}}, true},
		{"nodes prefix", SearchResult{Name: "n8n-nodes-foo"}, true},
		{"scoped nodes", SearchResult{Name: "@acme/n8n-nodes-foo"}, true},
		{"official scope", SearchResult{Name: "@n8n/client"}, true},
		{"description", SearchResult{Name: "x", Description: "Works with N8N"}, true},
		{"unrelated", SearchResult{Name: "left-pad", Description: "pads"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsN8nPackage(tt.r); got != tt.want {
				t.Errorf("IsN8nPackage(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestSortByScore(t *testing.T) {
	rs := []SearchResult{{Name: "b", Score: 1}, {Name: "c", Score: 5}, {Name: "a", Score: 1}}
	SortByScore(rs)
	want := []string{"c", "a", "b"}
	for i, w := range want {
		if rs[i].Name != w {
			t.Errorf("position %d = %q, want %q", i, rs[i].Name, w)
		}
	}
}

func TestSearchMergesTermsWithoutDuplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/-/v1/search" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("text") {
		case "one":
			w.Write([]byte(`{"objects":[
				{"package":{"name":"n8n-nodes-a","version":"1.0.0"},"searchScore":0.5},
				{"package":{"name":"left-pad","version":"1.0.0"},"searchScore":0.9}
			]}`))
		case "two":
			w.Write([]byte(`{"objects":[
				{"package":{"name":"n8n-nodes-a","version":"1.0.0"},"searchScore":0.1},
				{"package":{"name":"n8n-nodes-b","version":"2.0.0"},"score":{"final":0.8}}
			]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Search(context.Background(), []string{"one", "two", "bad"}, SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() returned %d results, want 2: %+v", len(got), got)
	}
	if got[0].Name != "n8n-nodes-b" || got[1].Name != "n8n-nodes-a" {
		t.Errorf("order = [%s %s], want [n8n-nodes-b n8n-nodes-a]", got[0].Name, got[1].Name)
	}
	if got[1].Score != 0.5 {
		t.Errorf("n8n-nodes-a score = %v, want first occurrence 0.5", got[1].Score)
	}

	all, err := newTestClient(srv).Search(context.Background(), []string{"one"}, SearchOptions{All: true})
	if err != nil {
		t.Fatalf("Search(All) error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Search(All) returned %d results, want 2", len(all))
	}
}

func TestSearchFailsWhenEveryTermFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Search(context.Background(), []string{"x", "y"}, SearchOptions{}); err == nil {
		t.Fatal("expected error when every term fails")
	}
}

func TestResolveVersion(t *testing.T) {
	p := &Packument{
		Name:     "demo",
		DistTags: map[string]string{"latest": "1.2.0", "next": "2.0.0-beta.1", "stale": "0.0.1"},
		Versions: map[string]VersionMeta{
			"1.0.0":        {},
			"1.2.0":        {},
			"1.10.1":       {},
			"2.0.0-beta.1": {},
		},
	}
	tests := []struct {
		request string
		want    string
		wantErr error
	}{
		{"", "1.2.0", nil},
		{"latest", "1.2.0", nil},
		{"next", "2.0.0-beta.1", nil},
		{"1.0.0", "1.0.0", nil},
		{"^1.0.0", "1.10.1", nil},
		{"~1.2", "1.2.0", nil},
		{">=3", "", ErrVersionNotFound},
		{"stale", "", ErrVersionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			got, err := ResolveVersion(p, tt.request)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveVersion(%q) error = %v, want %v", tt.request, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveVersion(%q) error: %v", tt.request, err)
			}
			if got != tt.want {
				t.Errorf("ResolveVersion(%q) = %q, want %q", tt.request, got, tt.want)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	srv := fakeRegistry(t, createTestTarGz(t, sampleEntries))
	dest := t.TempDir()

	info, err := newTestClient(srv).Download(context.Background(), "n8n-nodes-demo", "", dest)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", info.Version)
	}
	wantPath := filepath.Join(dest, "n8n-nodes-demo", "package")
	if info.ExtractedPath != wantPath {
		t.Errorf("ExtractedPath = %q, want %q", info.ExtractedPath, wantPath)
	}
	if info.Files.PackageJSON != "package.json" {
		t.Errorf("PackageJSON = %q, want package.json", info.Files.PackageJSON)
	}
	if len(info.Files.Nodes) != 2 {
		t.Errorf("Nodes = %v, want 2 node sources", info.Files.Nodes)
	}
	if len(info.Files.Credentials) != 1 {
		t.Errorf("Credentials = %v, want 1", info.Files.Credentials)
	}
	if len(info.Files.TypeScript) != 1 || len(info.Files.JSON) != 1 {
		t.Errorf("TypeScript = %v, JSON = %v, want one of each", info.Files.TypeScript, info.Files.JSON)
	}
	if info.N8n == nil || len(info.N8n.Nodes) != 1 {
		t.Errorf("N8n = %+v, want the manifest n8n block", info.N8n)
	}

	saved, err := ReadPackageInfo(filepath.Join(dest, "n8n-nodes-demo"))
	if err != nil {
		t.Fatalf("ReadPackageInfo() error: %v", err)
	}
	if saved.Name != "n8n-nodes-demo" {
		t.Errorf("saved Name = %q", saved.Name)
	}
	if saved.ExtractedPath != wantPath {
		t.Errorf("saved ExtractedPath = %q, want %q", saved.ExtractedPath, wantPath)
	}
	if _, err := os.Stat(filepath.Join(dest, "n8n-nodes-demo.tmp")); !os.IsNotExist(err) {
		t.Error("temporary extraction directory left behind")
	}
}

func TestDownloadIntegrityMismatchKeepsPreviousCopy(t *testing.T) {
	srv := fakeRegistry(t, createTestTarGz(t, sampleEntries), "n8n-nodes-demo")
	dest := t.TempDir()

	previous := filepath.Join(dest, "n8n-nodes-demo", "marker")
	os.MkdirAll(filepath.Dir(previous), 0755)
	os.WriteFile(previous, []byte("old"), 0644)

	if _, err := newTestClient(srv).Download(context.Background(), "n8n-nodes-demo", "", dest); err == nil {
		t.Fatal("expected checksum error")
	}
	if _, err := os.Stat(previous); err != nil {
		t.Errorf("previous copy was disturbed: %v", err)
	}
	entries, _ := os.ReadDir(dest)
	if len(entries) != 1 {
		t.Errorf("dest has %d entries, want only the previous copy", len(entries))
	}
}

func TestDownloadWithoutTarball(t *testing.T) {
	srv := fakeRegistry(t, createTestTarGz(t, sampleEntries))
	_, err := newTestClient(srv).Download(context.Background(), "n8n-nodes-demo", "next", t.TempDir())
	if !errors.Is(err, ErrNoTarball) {
		t.Errorf("Download(next) error = %v, want ErrNoTarball", err)
	}
}

func TestExtractTarGzRejectsTraversal(t *testing.T) {
	data := createTestTarGz(t, []tarEntry{
		{"package/ok.txt", "fine"},
		{"../../escape.txt", "bad"},
	})
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tgz")
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "out")
	if err := ExtractTarGz(archive, dest); err == nil {
		t.Fatal("expected traversal error")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("entry escaped the destination")
	}
}

func TestDownloadAllCollectsFailures(t *testing.T) {
	srv := fakeRegistry(t, createTestTarGz(t, sampleEntries))
	dest := t.TempDir()
	names := []string{"n8n-nodes-one", "missing", "n8n-nodes-two"}

	s, err := newTestClient(srv).DownloadAll(context.Background(), names, "", dest, 2)
	if err != nil {
		t.Fatalf("DownloadAll() error: %v", err)
	}
	if s.RunID == "" {
		t.Error("RunID is empty")
	}
	if s.Total != 3 {
		t.Errorf("Total = %d, want 3", s.Total)
	}
	if len(s.Packages) != 2 || s.Packages[0].Name != "n8n-nodes-one" || s.Packages[1].Name != "n8n-nodes-two" {
		t.Errorf("Packages = %+v, want one and two in order", s.Packages)
	}
	if len(s.Failed) != 1 || s.Failed[0].Name != "missing" {
		t.Errorf("Failed = %+v, want missing", s.Failed)
	}

	if err := WriteSummary(dest, s); err != nil {
		t.Fatalf("WriteSummary() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, SummaryFile)); err != nil {
		t.Errorf("summary not written: %v", err)
	}
}
