package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"ginutri/internal/nutrition"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalculate_JSON(t *testing.T) {
	out, err := runCLI(t, "calculate", "--sex", "female", "--weight", "68", "--height", "165",
		"--age", "32", "--activity", "moderate", "--goal", "lose_weight", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var targets nutrition.Targets
	if err := json.Unmarshal([]byte(out), &targets); err != nil {
		t.Fatalf("decode: %v (%s)", err, out)
	}
	if targets.ProteinGrams != 131 || targets.CarbGrams != 175 || targets.FatGrams != 58 {
		t.Fatalf("unexpected targets: %+v", targets)
	}
}

func TestCalculate_Table(t *testing.T) {
	out, err := runCLI(t, "calculate", "--sex", "masculino", "--weight", "80", "--height", "180",
		"--age", "30", "--activity", "light", "--goal", "maintain")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"BMI", "normal", "Protein", "Fat"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	_, err := runCLI(t, "calculate", "--sex", "female", "--weight", "68", "--height", "165",
		"--age", "32", "--activity", "extreme", "--goal", "lose_weight")
	if !errors.Is(err, nutrition.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculate_MissingFlag(t *testing.T) {
	if _, err := runCLI(t, "calculate", "--sex", "female"); err == nil {
		t.Fatalf("expected error for missing flags")
	}
}
