package costs

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"AWS", ProviderAWS, false},
		{"AZURE", ProviderAzure, false},
		{"GCP", ProviderGCP, false},
		{"NCP", ProviderNCP, false},
		{"aws", "", true},
		{"ORACLE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseProvider(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseProvider(%q): expected error, got %v", tt.input, got)
			}
			var cfgErr *ConfigurationError
			if err != nil && !errors.As(err, &cfgErr) {
				t.Errorf("ParseProvider(%q): expected ConfigurationError, got %T", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProvider(%q): unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseProvider(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNativeCurrency(t *testing.T) {
	tests := []struct {
		provider Provider
		want     string
	}{
		{ProviderAWS, "USD"},
		{ProviderAzure, "USD"},
		{ProviderGCP, "USD"},
		{ProviderNCP, "KRW"},
	}

	for _, tt := range tests {
		if got := tt.provider.NativeCurrency(); got != tt.want {
			t.Errorf("%s.NativeCurrency() = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestCollectorError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewCollectorError(ProviderAWS, "123456789012", "cost explorer unreachable", true, cause)

	if !errors.Is(err, cause) {
		t.Error("expected error chain to include cause")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}

	terminal := NewCollectorError(ProviderNCP, "ncp-1", "account deactivated", false, nil)
	if terminal.Transient {
		t.Error("expected terminal error")
	}
}

func TestCollectorErrorWireShape(t *testing.T) {
	cerr := NewCollectorError(ProviderAWS, "123456789012", "throttled", true, errors.New("429"))

	data, err := json.Marshal(cerr)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"provider", "accountId", "message", "transient"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("serialized error missing %q: %s", key, data)
		}
	}
	if len(fields) != 4 {
		t.Errorf("serialized error has extra fields: %s", data)
	}
}

func TestAccountRefKey(t *testing.T) {
	ref := AccountRef{Provider: ProviderAzure, AccountID: "sub-42"}
	if got := ref.Key(); got != "AZURE/sub-42" {
		t.Errorf("Key() = %q, want %q", got, "AZURE/sub-42")
	}
}
