package launch

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modsmith/launcher/model"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/minecraft"
)

type fakeBuilder struct {
	argv []string
	err  error
	seen minecraft.LaunchOptions
}

func (f *fakeBuilder) Command(ctx context.Context, versionID, root string, options minecraft.LaunchOptions) ([]string, error) {
	f.seen = options
	return f.argv, f.err
}

func TestIdentity_Deterministic(t *testing.T) {
	first := Identity("steve")
	second := Identity("steve")
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, Identity("alex"))
}

func TestMergeJVMArgs(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		args        []string
		maxRAM      string
		expect      []string
	}{
		{
			description: "appends ceiling",
			args:        []string{"-XX:+UseG1GC"},
			maxRAM:      "4G",
			expect:      []string{"-XX:+UseG1GC", "-Xmx4G"},
		},
		{
			description: "replaces prior ceiling",
			args:        []string{"-Xmx2G", "-XX:+UseG1GC"},
			maxRAM:      "8G",
			expect:      []string{"-XX:+UseG1GC", "-Xmx8G"},
		},
		{
			description: "invalid setting leaves args unchanged",
			args:        []string{"-Xmx2G"},
			maxRAM:      "lots",
			expect:      []string{"-Xmx2G"},
		},
		{
			description: "empty manifest args still get ceiling",
			args:        nil,
			maxRAM:      "512M",
			expect:      []string{"-Xmx512M"},
		},
	}
	for _, testCase := range testCases {
		settings := &model.Settings{MaxRAM: testCase.maxRAM}
		actual := MergeJVMArgs(ctx, testCase.args, settings)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestService_Launch(t *testing.T) {
	builder := &fakeBuilder{argv: []string{"/usr/bin/java", "-Xmx4G", "Main"}}
	var startedDir string
	var startedArgv []string
	starter := func(workDir string, argv []string) error {
		startedDir = workDir
		startedArgv = argv
		return nil
	}

	var updates []progress.Update
	tracker := progress.New(func(u progress.Update) { updates = append(updates, u) })
	service := New(builder, starter)

	manifest := &model.RemoteManifest{EngineVersion: "1.20.1", JVMArgs: []string{"-XX:+UseG1GC"}}
	settings := &model.Settings{Nickname: "steve", MaxRAM: "4G"}
	err := service.Launch(context.Background(), "1.20.1", "/game/root", manifest, settings, tracker, progress.Span{Start: 96, End: 100})
	assert.Nil(t, err)

	assert.Equal(t, "/game/root", startedDir)
	assert.Equal(t, builder.argv, startedArgv)
	assert.Equal(t, "steve", builder.seen.Username)
	assert.Equal(t, Identity("steve").String(), builder.seen.UUID)
	assert.Equal(t, "0", builder.seen.Token)
	assert.Equal(t, []string{"-XX:+UseG1GC", "-Xmx4G"}, builder.seen.JVMArguments)

	last := updates[len(updates)-1]
	assert.Equal(t, "Minecraft launched! You can close this launcher.", last.Message)
	assert.Equal(t, 100.0, *last.Percent)
}

func TestService_LaunchBuilderFailure(t *testing.T) {
	builder := &fakeBuilder{err: fmt.Errorf("no main class")}
	var updates []progress.Update
	tracker := progress.New(func(u progress.Update) { updates = append(updates, u) })
	service := New(builder, func(string, []string) error { return nil })

	err := service.Launch(context.Background(), "1.20.1", "/root", &model.RemoteManifest{}, &model.Settings{Nickname: "steve"}, tracker, progress.Span{Start: 96, End: 100})
	assert.NotNil(t, err)
	last := updates[len(updates)-1]
	assert.True(t, last.Err)
	assert.Contains(t, last.Message, "Error preparing launch command")
}

func TestService_LaunchJavaMissing(t *testing.T) {
	builder := &fakeBuilder{argv: []string{"java"}}
	var updates []progress.Update
	tracker := progress.New(func(u progress.Update) { updates = append(updates, u) })
	service := New(builder, func(string, []string) error {
		return fmt.Errorf("start: %w", exec.ErrNotFound)
	})

	err := service.Launch(context.Background(), "1.20.1", "/root", &model.RemoteManifest{}, &model.Settings{Nickname: "steve"}, tracker, progress.Span{Start: 96, End: 100})
	assert.NotNil(t, err)
	assert.Contains(t, updates[len(updates)-1].Message, "Java not found")
}
