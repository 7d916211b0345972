package harvest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/n8n"
)

type fakeInstaller struct {
	nodes    int
	fail     map[string]bool
	countErr bool
	counts   int
}

func (f *fakeInstaller) InstallPackage(_ context.Context, name string) (*n8n.InstallResult, error) {
	if f.fail[name] {
		return nil, errors.New("boom")
	}
	f.nodes += 2
	return &n8n.InstallResult{Package: name, Endpoint: "/rest/community-packages", StatusCode: 200}, nil
}

func (f *fakeInstaller) CountNodeTypes(context.Context) (int, error) {
	f.counts++
	if f.countErr {
		return 0, errors.New("count failed")
	}
	return f.nodes, nil
}

func TestInstallAllContinuesPastFailures(t *testing.T) {
	inst := &fakeInstaller{nodes: 10, fail: map[string]bool{"bad": true}}
	pkgs := []string{"a", "bad", "b", "c", "d", "e", "f"}

	var progress bytes.Buffer
	report := InstallAll(context.Background(), inst, pkgs, 5, &progress)

	if len(report.Succeeded) != 6 {
		t.Errorf("Succeeded = %v, want 6 packages", report.Succeeded)
	}
	if len(report.Failed) != 1 || report.Failed[0].Package != "bad" {
		t.Errorf("Failed = %+v", report.Failed)
	}
	if report.NodesBefore != 10 || report.NodesAfter != 22 {
		t.Errorf("nodes before/after = %d/%d, want 10/22", report.NodesBefore, report.NodesAfter)
	}
	if report.NodesAdded() != 12 {
		t.Errorf("NodesAdded = %d, want 12", report.NodesAdded())
	}
	if len(report.Checkpoints) != 1 || report.Checkpoints[0].Attempted != 5 {
		t.Errorf("Checkpoints = %+v, want one at 5", report.Checkpoints)
	}
	if !strings.Contains(progress.String(), "[2/7] Installing bad... FAILED") {
		t.Errorf("progress output missing failure line:\n%s", progress.String())
	}
}

func TestInstallAllUnknownCounts(t *testing.T) {
	inst := &fakeInstaller{countErr: true}
	report := InstallAll(context.Background(), inst, []string{"a"}, 0, nil)
	if report.NodesBefore != -1 || report.NodesAfter != -1 {
		t.Errorf("counts = %d/%d, want -1/-1", report.NodesBefore, report.NodesAfter)
	}
	if report.NodesAdded() != 0 {
		t.Errorf("NodesAdded = %d, want 0", report.NodesAdded())
	}
}

func TestReadPackageList(t *testing.T) {
	in := "# community picks\nn8n-nodes-a\n\n  n8n-nodes-b  \nn8n-nodes-a\n"
	names, err := ReadPackageList(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPackageList: %v", err)
	}
	want := []string{"n8n-nodes-a", "n8n-nodes-b"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
