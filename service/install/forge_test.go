package install

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/minecraft"
)

type fakeRunner struct {
	calls   int
	command string
	output  string
	status  int
	err     error
	onRun   func(ctx context.Context) error
}

func (f *fakeRunner) Run(ctx context.Context, command string, timeout time.Duration) (string, int, error) {
	f.calls++
	f.command = command
	if f.onRun != nil {
		if err := f.onRun(ctx); err != nil {
			return "", -1, err
		}
	}
	return f.output, f.status, f.err
}

func newTestForge(t *testing.T, fs afs.Service, server *httptest.Server) (*Forge, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	forge := NewForge(fs, server.Client(), minecraft.NewInventory(fs))
	forge.runner = runner
	forge.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	forge.mavenBase = server.URL
	return forge, runner
}

func installerServer(payload []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
			return
		}
		w.Write(payload)
	}))
}

func TestForge_InstallSuccess(t *testing.T) {
	stubSleep(t)
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/forge/success"

	server := installerServer([]byte("PK\x03\x04 fake installer jar"))
	defer server.Close()

	forge, runner := newTestForge(t, fs, server)
	runner.onRun = func(ctx context.Context) error {
		markInstalled(ctx, t, fs, root, "1.20.1-forge-47.2.0")
		return nil
	}

	var updates []progress.Update
	tracker := progress.New(func(u progress.Update) { updates = append(updates, u) })
	versionID, err := forge.Install(ctx, "1.20.1", "47.2.0", root, tracker, progress.Span{Start: 35, End: 60})
	assert.Nil(t, err)
	assert.Equal(t, "1.20.1-forge-47.2.0", versionID)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, runner.command, "--installClient")
	assert.Contains(t, runner.command, "/usr/bin/java")

	// installer artifact removed after the run
	exists, err := fs.Exists(ctx, url.Join(root, "forge-1.20.1-47.2.0-installer.jar"))
	assert.Nil(t, err)
	assert.False(t, exists)

	last := updates[len(updates)-1]
	assert.Equal(t, "Forge 47.2.0 installed successfully.", last.Message)
	assert.Equal(t, 60.0, *last.Percent)
}

func TestForge_InstallerNotFound(t *testing.T) {
	stubSleep(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fs := afs.New()
	forge, runner := newTestForge(t, fs, server)
	var updates []progress.Update
	tracker := progress.New(func(u progress.Update) { updates = append(updates, u) })

	_, err := forge.Install(context.Background(), "1.20.1", "0.0.1", "mem://localhost/forge/notfound", tracker, progress.Span{Start: 35, End: 60})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "HTTP 404")
	}
	assert.Equal(t, 0, runner.calls)

	last := updates[len(updates)-1]
	assert.True(t, last.Err)
	assert.Contains(t, last.Message, "installer not found for this version")
}

func TestForge_JavaMissingFailsFast(t *testing.T) {
	server := installerServer(nil)
	defer server.Close()

	fs := afs.New()
	forge, runner := newTestForge(t, fs, server)
	forge.lookPath = func(name string) (string, error) { return "", fmt.Errorf("not found") }

	var updates []progress.Update
	tracker := progress.New(func(u progress.Update) { updates = append(updates, u) })
	_, err := forge.Install(context.Background(), "1.20.1", "47.2.0", "mem://localhost/forge/nojava", tracker, progress.Span{Start: 35, End: 60})
	assert.NotNil(t, err)
	assert.Equal(t, 0, runner.calls)
	assert.Contains(t, updates[len(updates)-1].Message, "Java not found")
}

func TestForge_InstallerNonZeroExit(t *testing.T) {
	stubSleep(t)
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/forge/exitcode"

	server := installerServer([]byte("jar"))
	defer server.Close()

	forge, runner := newTestForge(t, fs, server)
	runner.status = 1
	runner.output = "Exception in thread main java.net.UnknownHostException"

	_, err := forge.Install(ctx, "1.20.1", "47.2.0", root, progress.New(nil), progress.Span{Start: 35, End: 60})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "exited with code 1")
	}

	exists, err := fs.Exists(ctx, url.Join(root, "forge-1.20.1-47.2.0-installer.jar"))
	assert.Nil(t, err)
	assert.False(t, exists, "installer artifact must be removed on failure too")
}

func TestForge_VerificationFailure(t *testing.T) {
	stubSleep(t)
	server := installerServer([]byte("jar"))
	defer server.Close()

	fs := afs.New()
	forge, _ := newTestForge(t, fs, server)
	// runner reports success without installing anything

	_, err := forge.Install(context.Background(), "1.20.1", "47.2.0", "mem://localhost/forge/verify", progress.New(nil), progress.Span{Start: 35, End: 60})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "was not found")
	}
}

func TestClassifyInstallerOutput(t *testing.T) {
	testCases := []struct {
		description string
		output      string
		expect      string
	}{
		{description: "network", output: "java.net.ConnectException", expect: "Network error during install."},
		{description: "missing file", output: "java.io.FileNotFoundException: launcher_profiles.json", expect: "File not found during install."},
		{description: "corrupt jar", output: "Error: Could not find main class", expect: "Corrupted download or Java issue."},
		{description: "bad target", output: "Target directory C:\\x is invalid", expect: "Invalid target directory?"},
		{description: "unknown", output: "something else entirely", expect: "Check log."},
	}
	for _, testCase := range testCases {
		actual := classifyInstallerOutput("Forge 47.2.0", 1, testCase.output)
		assert.Contains(t, actual, "Forge 47.2.0 installer failed (code 1)", testCase.description)
		assert.Contains(t, actual, testCase.expect, testCase.description)
	}
}
