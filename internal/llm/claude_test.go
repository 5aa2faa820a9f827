package llm

import (
	"testing"
)

func TestBuildMessageParams(t *testing.T) {
	params := buildMessageParams("claude-sonnet-4-5", []Message{
		{Role: RoleSystem, Content: "be concise"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
		{Role: RoleUser, Content: "continue"},
	}, Options{})

	if string(params.Model) != "claude-sonnet-4-5" {
		t.Errorf("model = %q", params.Model)
	}
	if params.MaxTokens != defaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", params.MaxTokens, defaultMaxTokens)
	}
	if len(params.System) != 1 || params.System[0].Text != "be concise" {
		t.Errorf("system = %v", params.System)
	}
	if len(params.Messages) != 3 {
		t.Errorf("message count = %d, want 3", len(params.Messages))
	}
}

func TestBuildMessageParamsOverrides(t *testing.T) {
	params := buildMessageParams("claude-sonnet-4-5", []Message{
		{Role: RoleUser, Content: "hello"},
	}, Options{Model: "claude-opus-4-1", MaxTokens: 1024, Temperature: 0.3})

	if string(params.Model) != "claude-opus-4-1" {
		t.Errorf("model override not applied: %q", params.Model)
	}
	if params.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", params.MaxTokens)
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.3 {
		t.Errorf("temperature not set: %v", params.Temperature)
	}
	if len(params.System) != 0 {
		t.Errorf("unexpected system blocks: %v", params.System)
	}
}
