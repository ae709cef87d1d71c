package cucumber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"mirage/internal/cli"
)

type featureState struct {
	workspace  string
	configPath string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	exitCode   int
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if state.workspace != "" {
			os.RemoveAll(state.workspace)
		}
		return ctx, nil
	})

	ctx.Step(`^a workspace with a valid configuration$`, state.aWorkspaceWithValidConfig)
	ctx.Step(`^the config is missing the judge model$`, state.theConfigIsMissingJudgeModel)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the exit code is zero$`, state.theExitCodeIsZero)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the output contains "([^"]+)"$`, state.theOutputContains)
	ctx.Step(`^the error output contains "([^"]+)"$`, state.theErrorOutputContains)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
}

func (s *featureState) reset() {
	s.workspace = ""
	s.configPath = ""
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
}

func (s *featureState) aWorkspaceWithValidConfig() error {
	dir, err := os.MkdirTemp("", "mirage-cucumber-")
	if err != nil {
		return err
	}
	s.workspace = dir

	dataDir := filepath.Join(dir, "data", "canonical")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	itemLine := `{"id":"A-001","track":"A","prompt":"The bnk is closed.","gold_behavior":{"must_do":["flag typo"],"must_not_do":["assume"]},"variants":{"seeded":false}}`
	if err := os.WriteFile(filepath.Join(dataDir, "trackA.jsonl"), []byte(itemLine+"\n"), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "judge_prompt.txt"), []byte("Score strictly."), 0o644); err != nil {
		return err
	}

	s.configPath = filepath.Join(dir, "mirage.yaml")
	return s.writeConfig("judge/model")
}

func (s *featureState) writeConfig(judgeModel string) error {
	config := fmt.Sprintf(`version: 1
dataset:
  dir: %s
judge:
  model: %q
  instructions_file: judge_prompt.txt
providers:
  test:
    name: Test
    models:
      - id: test/model
        name: Test Model
        enabled: true
output:
  dir: %s
  database: %s
`, filepath.Join(s.workspace, "data"),
		judgeModel,
		filepath.Join(s.workspace, "results"),
		filepath.Join(s.workspace, "mirage.duckdb"))
	return os.WriteFile(s.configPath, []byte(config), 0o644)
}

func (s *featureState) theConfigIsMissingJudgeModel() error {
	return s.writeConfig("")
}

func (s *featureState) iRunCommand(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 || fields[0] != "mirage" {
		return fmt.Errorf("expected a mirage command, got %q", command)
	}
	args := make([]string, 0, len(fields)-1)
	for _, arg := range fields[1:] {
		if arg == "mirage.yaml" && s.configPath != "" {
			arg = s.configPath
		}
		args = append(args, arg)
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *featureState) theExitCodeIsZero() error {
	if s.exitCode != 0 {
		return fmt.Errorf("expected exit 0, got %d (stderr: %s)", s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit (stdout: %s)", s.stdout.String())
	}
	return nil
}

func (s *featureState) theOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) {
		return fmt.Errorf("output missing %q:\n%s", text, s.stdout.String())
	}
	return nil
}

func (s *featureState) theErrorOutputContains(text string) error {
	if !strings.Contains(s.stderr.String(), text) {
		return fmt.Errorf("stderr missing %q:\n%s", text, s.stderr.String())
	}
	return nil
}

func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	for _, row := range table.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		name := strings.TrimSpace(row.Cells[0].Value)
		if !strings.Contains(s.stdout.String(), name) {
			return fmt.Errorf("usage missing command %q:\n%s", name, s.stdout.String())
		}
	}
	return nil
}
