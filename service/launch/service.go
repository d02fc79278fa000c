// Package launch builds the final process invocation for an installed
// version and starts it as a detached child. The player identity is a
// deterministic pseudo-identity derived from the display name, not an
// authenticated account.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/model"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/service/minecraft"
)

// offlineToken is the fixed placeholder credential paired with the derived
// identity.
const offlineToken = "0"

// Identity derives the stable player identifier from the display name via a
// name-based UUID (namespace DNS + name).
func Identity(nickname string) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceDNS, []byte(nickname))
}

// MergeJVMArgs merges the manifest-declared argument list with the locally
// configured memory ceiling. Any prior -Xmx occurrence is replaced rather
// than duplicated; an invalid allocation string is logged and ignored so the
// manifest arguments still apply.
func MergeJVMArgs(ctx context.Context, manifestArgs []string, settings *model.Settings) []string {
	logger := ctxlog.FromContext(ctx)
	maxRAM, valid := settings.NormalizedMaxRAM()
	if !valid {
		logger.Warn("invalid max_ram setting, using manifest JVM args unchanged", "max_ram", settings.MaxRAM)
		return append([]string(nil), manifestArgs...)
	}
	merged := make([]string, 0, len(manifestArgs)+1)
	for _, arg := range manifestArgs {
		if strings.HasPrefix(arg, "-Xmx") {
			continue
		}
		merged = append(merged, arg)
	}
	merged = append(merged, "-Xmx"+maxRAM)
	logger.Info("applied memory ceiling", "arg", "-Xmx"+maxRAM)
	return merged
}

// Starter launches an argument vector as a detached, unmanaged child
// process. The default implementation releases the process handle so the
// child outlives the launcher.
type Starter func(workDir string, argv []string) error

func defaultStarter(workDir string, argv []string) error {
	command := exec.Command(argv[0], argv[1:]...)
	command.Dir = workDir
	if err := command.Start(); err != nil {
		return err
	}
	return command.Process.Release()
}

// Service is the launch stage executor.
type Service struct {
	builder minecraft.CommandBuilder
	starter Starter
}

// New returns a launcher delegating command construction to the supplied
// builder.
func New(builder minecraft.CommandBuilder, starter Starter) *Service {
	if starter == nil {
		starter = defaultStarter
	}
	return &Service{builder: builder, starter: starter}
}

// Launch composes and starts the game process. Success is terminal for the
// run.
func (s *Service) Launch(ctx context.Context, versionID, root string, manifest *model.RemoteManifest, settings *model.Settings, tracker *progress.Tracker, span progress.Span) error {
	logger := ctxlog.FromContext(ctx)
	tracker.Report(fmt.Sprintf("Preparing to launch Minecraft %s...", versionID), span.Start)

	options := minecraft.LaunchOptions{
		Username:     settings.Nickname,
		UUID:         Identity(settings.Nickname).String(),
		Token:        offlineToken,
		JVMArguments: MergeJVMArgs(ctx, manifest.JVMArgs, settings),
	}
	logger.Info("resolved launch options", "username", options.Username, "uuid", options.UUID, "jvmArgs", options.JVMArguments)

	argv, err := s.builder.Command(ctx, versionID, root, options)
	if err != nil {
		logger.Error("failed to build launch command", "versionID", versionID, "error", err)
		tracker.Error(fmt.Sprintf("Error preparing launch command: %v", err), span.Start)
		return fmt.Errorf("failed to build launch command for %s: %w", versionID, err)
	}
	logger.Info("launch command ready", "argv", strings.Join(argv, " "))

	tracker.Report(fmt.Sprintf("Launching Minecraft as %s...", settings.Nickname), span.At(0.5))
	if err := s.starter(root, argv); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			logger.Error("launch failed: java not found")
			tracker.Error("Error: Java not found. Please install Java and ensure it's in your PATH.", span.At(0.5))
			return fmt.Errorf("java executable not found in PATH: %w", err)
		}
		logger.Error("launch failed", "error", err)
		tracker.Error(fmt.Sprintf("Error launching Minecraft: %v", err), span.At(0.5))
		return fmt.Errorf("failed to launch process: %w", err)
	}

	tracker.Report("Minecraft launched! You can close this launcher.", span.End)
	logger.Info("game process started", "versionID", versionID)
	return nil
}
