package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		CloseAll()
		SetDebugMode(false)
		logsDir = ""
	})
}

func TestDisabledLoggingWritesNothing(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	if err := Initialize(dir, false, "info"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	Trial("this line must go nowhere")

	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Error("logs directory created with debug mode off")
	}
}

func TestCategoryFilesAreSeparate(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	if err := Initialize(dir, true, "debug"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	Trial("trial line")
	Case("case line")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	trialLog, err := os.ReadFile(filepath.Join(dir, "logs", date+"_trial.log"))
	if err != nil {
		t.Fatalf("trial log missing: %v", err)
	}
	if !strings.Contains(string(trialLog), "trial line") {
		t.Error("trial log missing its line")
	}
	if strings.Contains(string(trialLog), "case line") {
		t.Error("case line leaked into the trial log")
	}
}

func TestLevelFiltering(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	if err := Initialize(dir, true, "warn"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	l := Get(CategoryStore)
	l.Debug("debug suppressed")
	l.Info("info suppressed")
	l.Warn("warn kept")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, "logs", date+"_store.log"))
	if err != nil {
		t.Fatalf("store log missing: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "suppressed") {
		t.Errorf("filtered levels were written: %s", out)
	}
	if !strings.Contains(out, "warn kept") {
		t.Error("warn line missing")
	}
}

func TestTimerLogsDuration(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()

	if err := Initialize(dir, true, "debug"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	timer := StartTimer(CategoryLLM, "generateContent")
	elapsed := timer.Stop()
	if elapsed < 0 {
		t.Errorf("negative elapsed time %v", elapsed)
	}

	CloseAll()
	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, "logs", date+"_llm.log"))
	if err != nil {
		t.Fatalf("llm log missing: %v", err)
	}
	if !strings.Contains(string(data), "generateContent completed in") {
		t.Error("timer line missing")
	}
}
